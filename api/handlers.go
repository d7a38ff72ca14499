/*
handlers.go - HTTP handler context and shared response helpers

PURPOSE:
  Holds the Handler struct every endpoint hangs off, and the helpers that
  keep the wire format uniform: a JSON envelope, error-to-status mapping,
  body decoding with validation, and query/path parsing.

RESPONSE ENVELOPE:
  Success:  {"success": true, "data": ..., "count": n, "message": "..."}
  Failure:  {"success": false, "error": "<title>", "message": "<detail>",
             "details": [{"field": "...", "message": "..."}]}

  count is only present on list responses. details is only present when
  request validation failed.

ERROR HANDLING:
  Handlers never pick status codes for domain errors themselves. They pass
  the error to fail(), which maps the generic sentinels:
  - 400: ErrInvalidInput, ErrInvalidStatus, ErrInvalidReference
  - 403: ErrForbidden
  - 404: ErrNotFound
  - 409: ErrConflict
  - 500: anything else (logged with the request ID)

SEE ALSO:
  - server.go: Router setup and middleware
  - dto.go: Request/response data structures
  - validate.go: Struct tag validation
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/logger"
	"github.com/warp/pto-tracker/pto"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store pto.Store
	Calc  pto.Calculator
	Log   *zap.Logger

	// PasswordCost is the bcrypt cost for new password hashes.
	PasswordCost int

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a handler over store. A nil logger discards output.
func NewHandler(store pto.Store, calc pto.Calculator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:        store,
		Calc:         calc,
		Log:          log.Named("api"),
		PasswordCost: bcrypt.DefaultCost,
	}
}

// =============================================================================
// ENVELOPE
// =============================================================================

// Envelope is the body of every API response.
type Envelope struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Count   *int          `json:"count,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
	Details []FieldDetail `json:"details,omitempty"`
}

// FieldDetail describes one invalid field of a request body.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

func writeList[T any](w http.ResponseWriter, items []T, message string) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: items, Count: &n, Message: message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

func writeError(w http.ResponseWriter, status int, title string, err error) {
	resp := Envelope{Error: title}
	if err != nil {
		resp.Message = err.Error()
	}
	var verr *generic.ValidationError
	if errors.As(err, &verr) {
		resp.Details = []FieldDetail{{Field: verr.Field, Message: verr.Message}}
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func statusFor(err error) int {
	switch {
	case errors.Is(err, generic.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, generic.ErrForbidden):
		return http.StatusForbidden
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func titleFor(err error, status int) string {
	switch status {
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusForbidden:
		return "Unauthorized"
	}
	switch {
	case errors.Is(err, generic.ErrInvalidStatus):
		return "Invalid request status"
	case errors.Is(err, generic.ErrInvalidReference):
		return "Invalid reference"
	default:
		return "Invalid input"
	}
}

// fail writes err with the status its sentinel maps to. Server errors use
// title as the error and are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, title string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error(title, zap.Error(err))
		writeError(w, status, title, err)
		return
	}
	writeError(w, status, titleFor(err, status), err)
}

// notFoundOr is fail with a resource-specific title for missing records.
func (h *Handler) notFoundOr(w http.ResponseWriter, r *http.Request, err error, notFoundTitle, title string) {
	if generic.IsNotFound(err) {
		writeError(w, http.StatusNotFound, notFoundTitle, err)
		return
	}
	h.fail(w, r, err, title)
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

// decode reads a JSON body into dst and validates its struct tags. On
// failure it has already written the response.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// queryYear parses an optional year query parameter.
func queryYear(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, generic.NewValidationError(key, fmt.Sprintf("invalid year %q", raw))
	}
	return year, nil
}

func (h *Handler) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
