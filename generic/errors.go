/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The storage layer maps driver errors onto these sentinels and the HTTP
  layer maps the sentinels onto status codes, so neither needs to know
  about the other.

ERROR CATEGORIES:
  1. Lookup errors     - ErrNotFound
  2. Integrity errors  - ErrConflict, ErrInvalidReference
  3. Business rules    - ErrInvalidInput, ErrInvalidStatus, ErrForbidden

USAGE:
  if errors.Is(err, generic.ErrNotFound) {
      // 404
  }

SEE ALSO:
  - store/sqlite/errors.go: Driver error mapping
  - api/handlers.go: statusFor()
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness rule
	// (duplicate email, team name, policy name, employee-year balance).
	ErrConflict = errors.New("already exists")

	// ErrInvalidReference is returned when a write points at a record that
	// doesn't exist (foreign key violation).
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidInput is returned when a value breaks a business rule.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidStatus is returned when a request is not in a state that
	// allows the attempted transition.
	ErrInvalidStatus = errors.New("invalid request status")

	// ErrForbidden is returned when the acting user's role lacks a capability.
	ErrForbidden = errors.New("forbidden")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError is shorthand for &ValidationError{...}.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidReference)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
