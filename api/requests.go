/*
requests.go - PTO request lifecycle endpoints

PURPOSE:
  CRUD over PTO requests plus the approve and reject actions.

STATUS RULES:
  - Create and update may set DRAFT or SUBMITTED only
  - APPROVED and REJECTED are reached through approve/reject, which check
    that the request is SUBMITTED and that the approver is a manager or
    admin
  - A decided request can no longer change status through update

SEE ALSO:
  - pto/request.go: SetStatus and Decide
*/
package api

import (
	"net/http"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
	"go.uber.org/zap"
)

// =============================================================================
// REQUEST ENDPOINTS
// =============================================================================

// ListRequests returns requests, optionally filtered by employeeId, status,
// approverId and year query parameters.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := queryYear(r, "year", 0)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch PTO requests")
		return
	}
	status := pto.RequestStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status",
			generic.NewValidationError("status", "unknown status "+string(status)))
		return
	}

	requests, err := h.Store.ListRequests(r.Context(), pto.RequestFilter{
		EmployeeID: q.Get("employeeId"),
		Status:     status,
		ApproverID: q.Get("approverId"),
		Year:       year,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to fetch PTO requests")
		return
	}
	writeList(w, toRequestDTOs(requests), "")
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Store.GetRequest(r.Context(), pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "PTO request not found", "Failed to fetch PTO request")
		return
	}
	writeData(w, http.StatusOK, toRequestDTO(*req), "")
}

// CreateRequest stores a new request as DRAFT unless SUBMITTED is asked for.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body CreateRequestRequest
	if !decode(w, r, &body) {
		return
	}

	start, err := generic.ParseTime(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}
	end, err := generic.ParseTime(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	req := pto.Request{
		EmployeeID: body.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		Hours:      hoursOf(body.Hours),
		Status:     pto.StatusDraft,
		Note:       body.Note,
	}
	if body.Status != "" {
		if err := req.SetStatus(pto.RequestStatus(body.Status)); err != nil {
			h.fail(w, r, err, "Failed to create PTO request")
			return
		}
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, err, "Failed to create PTO request")
		return
	}

	ctx := r.Context()
	if err := h.Store.CreateRequest(ctx, &req); err != nil {
		h.fail(w, r, err, "Failed to create PTO request")
		return
	}

	created, err := h.Store.GetRequest(ctx, req.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to create PTO request")
		return
	}
	writeData(w, http.StatusCreated, toRequestDTO(*created), "PTO request created successfully")
}

// UpdateRequest applies the provided fields. Dates and hours are validated
// as a whole after the merge.
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	var body UpdateRequestRequest
	if !decode(w, r, &body) {
		return
	}

	ctx := r.Context()
	req, err := h.Store.GetRequest(ctx, pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "PTO request not found", "Failed to update PTO request")
		return
	}

	if body.StartDate != nil {
		start, err := generic.ParseTime(*body.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range", err)
			return
		}
		req.StartDate = start
	}
	if body.EndDate != nil {
		end, err := generic.ParseTime(*body.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range", err)
			return
		}
		req.EndDate = end
	}
	if body.Hours != nil {
		req.Hours = hoursOf(body.Hours)
	}
	if body.Note != nil {
		req.Note = *body.Note
	}
	if body.Status != nil && pto.RequestStatus(*body.Status) != req.Status {
		if err := req.SetStatus(pto.RequestStatus(*body.Status)); err != nil {
			h.fail(w, r, err, "Failed to update PTO request")
			return
		}
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, err, "Failed to update PTO request")
		return
	}

	if err := h.Store.UpdateRequest(ctx, req); err != nil {
		h.fail(w, r, err, "Failed to update PTO request")
		return
	}

	updated, err := h.Store.GetRequest(ctx, req.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to update PTO request")
		return
	}
	writeData(w, http.StatusOK, toRequestDTO(*updated), "PTO request updated successfully")
}

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteRequest(r.Context(), pathID(r)); err != nil {
		h.notFoundOr(w, r, err, "PTO request not found", "Failed to delete PTO request")
		return
	}
	writeMessage(w, "PTO request deleted successfully")
}

// =============================================================================
// APPROVAL ENDPOINTS
// =============================================================================

// ApproveRequest marks a SUBMITTED request APPROVED.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, pto.DecisionApprove)
}

// RejectRequest marks a SUBMITTED request REJECTED.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, pto.DecisionReject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, d pto.Decision) {
	var body DecisionRequest
	if !decode(w, r, &body) {
		return
	}

	ctx := r.Context()
	req, err := h.Store.GetRequest(ctx, pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "PTO request not found", "Failed to "+string(d)+" PTO request")
		return
	}

	// An unknown approver is treated like one without the role.
	approver, err := h.Store.GetUser(ctx, body.ApproverID)
	if err != nil && !generic.IsNotFound(err) {
		h.fail(w, r, err, "Failed to "+string(d)+" PTO request")
		return
	}

	if err := pto.Decide(req, approver, d, body.Note); err != nil {
		h.fail(w, r, err, "Failed to "+string(d)+" PTO request")
		return
	}
	if err := h.Store.UpdateRequest(ctx, req); err != nil {
		h.fail(w, r, err, "Failed to "+string(d)+" PTO request")
		return
	}

	updated, err := h.Store.GetRequest(ctx, req.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to "+string(d)+" PTO request")
		return
	}

	h.Log.Info("request decided",
		zap.String("request_id", req.ID),
		zap.String("status", string(req.Status)),
		zap.String("approver_id", body.ApproverID),
	)
	message := "PTO request approved successfully"
	if d == pto.DecisionReject {
		message = "PTO request rejected successfully"
	}
	writeData(w, http.StatusOK, toRequestDTO(*updated), message)
}
