package pto

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/pto-tracker/generic"
)

// =============================================================================
// REQUEST - A block of hours an employee wants off
// =============================================================================

type RequestStatus string

const (
	StatusDraft     RequestStatus = "DRAFT"
	StatusSubmitted RequestStatus = "SUBMITTED"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
)

// Statuses lists every status in lifecycle order.
var Statuses = []RequestStatus{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Decided is true once a manager or admin has acted on the request.
func (s RequestStatus) Decided() bool {
	return s == StatusApproved || s == StatusRejected
}

type Request struct {
	ID         string
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	Hours      generic.Amount
	Status     RequestStatus
	ApproverID *string
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated by reads
	EmployeeName string
	Approver     *UserSummary
}

// Validate checks the date range and hours. It does not look at status.
func (r Request) Validate() error {
	if !r.StartDate.Before(r.EndDate) {
		return generic.NewValidationError("startDate", "must be before end date")
	}
	if !r.Hours.IsPositive() {
		return generic.NewValidationError("hours", "must be greater than 0")
	}
	return nil
}

// SetStatus applies a status change made through create or update. Only the
// employee-side statuses may be set this way; APPROVED and REJECTED go
// through Decide so the role check can't be skipped.
func (r *Request) SetStatus(s RequestStatus) error {
	if !s.Valid() {
		return generic.NewValidationError("status", fmt.Sprintf("unknown status %q", s))
	}
	if s.Decided() {
		return fmt.Errorf("%w: use the approve or reject endpoint to set %s", generic.ErrInvalidStatus, s)
	}
	if r.Status.Decided() {
		return fmt.Errorf("%w: request is already %s", generic.ErrInvalidStatus, r.Status)
	}
	r.Status = s
	return nil
}

// =============================================================================
// DECISIONS - Approve / reject, gated by role
// =============================================================================

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) status() RequestStatus {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Decide approves or rejects r on behalf of approver.
//
// Rules:
//   - r must be SUBMITTED (ErrInvalidStatus otherwise)
//   - approver must exist and hold CapApproveRequests (ErrForbidden otherwise)
//   - a non-empty note replaces the request note
func Decide(r *Request, approver *User, d Decision, note string) error {
	if r.Status != StatusSubmitted {
		return fmt.Errorf("%w: only submitted requests can be %s", generic.ErrInvalidStatus, strings.ToLower(string(d.status())))
	}
	if approver == nil || !Can(approver.Role, CapApproveRequests) {
		return fmt.Errorf("%w: only managers and admins can %s requests", generic.ErrForbidden, d)
	}

	approverID := approver.ID
	r.Status = d.status()
	r.ApproverID = &approverID
	if note != "" {
		r.Note = note
	}
	return nil
}

// =============================================================================
// FILTERS
// =============================================================================

// RequestFilter narrows ListRequests. Zero values mean "any".
type RequestFilter struct {
	EmployeeID string
	Status     RequestStatus
	ApproverID string
	Year       int // requests whose start date falls in the calendar year
}

// BalanceFilter narrows ListBalances. Zero values mean "any".
type BalanceFilter struct {
	EmployeeID string
	Year       int
	PolicyID   string
}
