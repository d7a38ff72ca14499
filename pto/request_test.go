package pto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

func submitted() *pto.Request {
	return &pto.Request{
		ID:         "req-1",
		EmployeeID: "emp-1",
		StartDate:  *date(2025, time.July, 14),
		EndDate:    *date(2025, time.July, 15),
		Hours:      hours("8"),
		Status:     pto.StatusSubmitted,
		Note:       "family trip",
	}
}

func userWithRole(id string, role pto.Role) *pto.User {
	return &pto.User{ID: id, Name: id, Email: id + "@example.com", Role: role}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestRequest_Validate(t *testing.T) {
	r := submitted()
	require.NoError(t, r.Validate())

	r.EndDate = r.StartDate
	err := r.Validate()
	require.ErrorIs(t, err, generic.ErrInvalidInput)
	var verr *generic.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "startDate", verr.Field)

	r = submitted()
	r.Hours = hours("0")
	err = r.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hours", verr.Field)
}

// =============================================================================
// STATUS CHANGES
// =============================================================================

func TestRequest_SetStatus(t *testing.T) {
	r := &pto.Request{Status: pto.StatusDraft}

	require.NoError(t, r.SetStatus(pto.StatusSubmitted))
	assert.Equal(t, pto.StatusSubmitted, r.Status)

	require.NoError(t, r.SetStatus(pto.StatusDraft), "submitted requests can be pulled back to draft")

	err := r.SetStatus(pto.StatusApproved)
	assert.ErrorIs(t, err, generic.ErrInvalidStatus)
	assert.Equal(t, pto.StatusDraft, r.Status)

	err = r.SetStatus("ON_HOLD")
	assert.ErrorIs(t, err, generic.ErrInvalidInput)
}

func TestRequest_SetStatusAfterDecision(t *testing.T) {
	r := submitted()
	r.Status = pto.StatusApproved

	err := r.SetStatus(pto.StatusDraft)
	assert.ErrorIs(t, err, generic.ErrInvalidStatus)
	assert.Equal(t, pto.StatusApproved, r.Status)
}

// =============================================================================
// DECISIONS
// =============================================================================

func TestDecide_ManagerApproves(t *testing.T) {
	// GIVEN: A submitted request
	// WHEN: A manager approves with a note
	// THEN: Status, approver and note are set

	r := submitted()
	err := pto.Decide(r, userWithRole("mgr", pto.RoleManager), pto.DecisionApprove, "enjoy")

	require.NoError(t, err)
	assert.Equal(t, pto.StatusApproved, r.Status)
	require.NotNil(t, r.ApproverID)
	assert.Equal(t, "mgr", *r.ApproverID)
	assert.Equal(t, "enjoy", r.Note)
}

func TestDecide_EmptyNoteKeepsExisting(t *testing.T) {
	r := submitted()
	err := pto.Decide(r, userWithRole("admin", pto.RoleAdmin), pto.DecisionReject, "")

	require.NoError(t, err)
	assert.Equal(t, pto.StatusRejected, r.Status)
	assert.Equal(t, "family trip", r.Note)
}

func TestDecide_EmployeeForbidden(t *testing.T) {
	r := submitted()
	err := pto.Decide(r, userWithRole("emp", pto.RoleEmployee), pto.DecisionApprove, "")

	assert.ErrorIs(t, err, generic.ErrForbidden)
	assert.Equal(t, pto.StatusSubmitted, r.Status)
	assert.Nil(t, r.ApproverID)
}

func TestDecide_MissingApproverForbidden(t *testing.T) {
	err := pto.Decide(submitted(), nil, pto.DecisionApprove, "")
	assert.ErrorIs(t, err, generic.ErrForbidden)
}

func TestDecide_OnlySubmitted(t *testing.T) {
	for _, s := range []pto.RequestStatus{pto.StatusDraft, pto.StatusApproved, pto.StatusRejected} {
		r := submitted()
		r.Status = s

		err := pto.Decide(r, userWithRole("mgr", pto.RoleManager), pto.DecisionApprove, "")

		assert.ErrorIs(t, err, generic.ErrInvalidStatus, "from %s", s)
		assert.Contains(t, err.Error(), "only submitted requests can be approved")
		assert.Equal(t, s, r.Status)
	}
}

func TestDecide_StatusCheckedBeforeRole(t *testing.T) {
	r := submitted()
	r.Status = pto.StatusDraft

	err := pto.Decide(r, userWithRole("emp", pto.RoleEmployee), pto.DecisionReject, "")
	assert.ErrorIs(t, err, generic.ErrInvalidStatus)
}

func TestPolicyAndBalanceValidate(t *testing.T) {
	p := usStandard()
	require.NoError(t, p.Validate())
	p.CarryoverMax = hours("-1")
	assert.ErrorIs(t, p.Validate(), generic.ErrInvalidInput)

	b := pto.Balance{Year: 2025, Accrued: hours("40"), Used: hours("8"), Carryover: hours("12")}
	require.NoError(t, b.Validate())
	b.Year = 1999
	assert.ErrorIs(t, b.Validate(), generic.ErrInvalidInput)
	b.Year = 3001
	assert.ErrorIs(t, b.Validate(), generic.ErrInvalidInput)
	b.Year = 3000
	b.Used = hours("-0.5")
	assert.ErrorIs(t, b.Validate(), generic.ErrInvalidInput)
}

func TestBalance_ValidateUpdate(t *testing.T) {
	// GIVEN: A snapshot that carried an overdraft forward
	before := pto.Balance{Year: 2025, Accrued: hours("80.04"), Used: hours("0"), Carryover: hours("-6")}
	require.Error(t, before.Validate())

	// WHEN/THEN: Editing other fields keeps the carryover valid
	after := before
	after.Used = hours("4")
	assert.NoError(t, after.ValidateUpdate(before))

	// WHEN/THEN: Writing a different negative carryover is rejected
	after.Carryover = hours("-3")
	assert.ErrorIs(t, after.ValidateUpdate(before), generic.ErrInvalidInput)

	// WHEN/THEN: The other checks still apply
	after.Carryover = before.Carryover
	after.Used = hours("-1")
	assert.ErrorIs(t, after.ValidateUpdate(before), generic.ErrInvalidInput)
}
