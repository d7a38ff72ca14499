/*
handlers_test.go - HTTP tests for the CRUD and approval endpoints

Tests run through the full router against an in-memory SQLite store:
- Envelope shape and status codes per error sentinel
- Request body validation messages
- Password hashing
- Request status rules and the approve/reject role check
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
	"github.com/warp/pto-tracker/store/sqlite"
	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details []FieldDetail   `json:"details"`

	raw string
}

func setupTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	store, err := sqlite.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, pto.Calculator{}, nil)
	h.PasswordCost = bcrypt.MinCost
	return h, NewRouter(h, RouterOptions{})
}

// call sends body (a string is sent verbatim, anything else as JSON).
func call(t *testing.T, router http.Handler, method, path string, body any) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	resp.raw = rec.Body.String()
	return rec.Code, resp
}

func dataAs[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), string(resp.Data))
	return v
}

func createUser(t *testing.T, router http.Handler, name, email string, role pto.Role) UserDTO {
	t.Helper()
	status, resp := call(t, router, http.MethodPost, "/api/users", map[string]any{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(t, http.StatusCreated, status, resp.raw)
	return dataAs[UserDTO](t, resp)
}

func createEmployee(t *testing.T, router http.Handler, userID string, startDate string) EmployeeDTO {
	t.Helper()
	body := map[string]any{"userId": userID, "title": "Engineer", "department": "Engineering"}
	if startDate != "" {
		body["startDate"] = startDate
	}
	status, resp := call(t, router, http.MethodPost, "/api/employees", body)
	require.Equal(t, http.StatusCreated, status, resp.raw)
	return dataAs[EmployeeDTO](t, resp)
}

func createPolicy(t *testing.T, router http.Handler) PolicyDTO {
	t.Helper()
	status, resp := call(t, router, http.MethodPost, "/api/policies", map[string]any{
		"name": "US-Standard", "accrualHrsMo": 6.67, "carryoverMax": 40, "effectiveOn": "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, status, resp.raw)
	return dataAs[PolicyDTO](t, resp)
}

func createRequest(t *testing.T, router http.Handler, employeeID, start, end string, hours float64, status pto.RequestStatus) RequestDTO {
	t.Helper()
	code, resp := call(t, router, http.MethodPost, "/api/requests", map[string]any{
		"employeeId": employeeID, "startDate": start, "endDate": end, "hours": hours, "status": status,
	})
	require.Equal(t, http.StatusCreated, code, resp.raw)
	return dataAs[RequestDTO](t, resp)
}

// people is a manager and an employee with a profile reporting to them.
type people struct {
	manager  UserDTO
	user     UserDTO
	employee EmployeeDTO
}

func setupPeople(t *testing.T, router http.Handler, startDate string) people {
	t.Helper()
	manager := createUser(t, router, "Morgan Manager", "manager@example.com", pto.RoleManager)
	user := createUser(t, router, "Erin Employee", "erin@example.com", pto.RoleEmployee)
	return people{manager: manager, user: user, employee: createEmployee(t, router, user.ID, startDate)}
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{generic.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get user: %w", generic.ErrNotFound), http.StatusNotFound},
		{generic.ErrConflict, http.StatusConflict},
		{generic.ErrForbidden, http.StatusForbidden},
		{generic.ErrInvalidInput, http.StatusBadRequest},
		{generic.NewValidationError("hours", "must be greater than 0"), http.StatusBadRequest},
		{generic.ErrInvalidStatus, http.StatusBadRequest},
		{generic.ErrInvalidReference, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

// =============================================================================
// USERS
// =============================================================================

func TestCreateUser_HashesPasswordAndDefaultsRole(t *testing.T) {
	// GIVEN: A create request without a role
	h, router := setupTestHandler(t)

	// WHEN: Creating the user
	status, resp := call(t, router, http.MethodPost, "/api/users", map[string]any{
		"name": "Erin Employee", "email": "erin@example.com", "password": "hunter22",
	})

	// THEN: The user is an EMPLOYEE, the password is hashed and never returned
	require.Equal(t, http.StatusCreated, status, resp.raw)
	assert.True(t, resp.Success)
	assert.Equal(t, "User created successfully", resp.Message)
	assert.NotContains(t, resp.raw, "hunter22")
	assert.NotContains(t, strings.ToLower(resp.raw), "password")

	user := dataAs[UserDTO](t, resp)
	assert.Equal(t, pto.RoleEmployee, user.Role)

	stored, err := h.Store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
}

func TestCreateUser_DuplicateEmailIsConflict(t *testing.T) {
	_, router := setupTestHandler(t)
	createUser(t, router, "First", "same@example.com", pto.RoleEmployee)

	status, resp := call(t, router, http.MethodPost, "/api/users", map[string]any{
		"name": "Second", "email": "same@example.com", "password": "x",
	})

	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "Conflict", resp.Error)
}

func TestCreateUser_ValidationMessages(t *testing.T) {
	_, router := setupTestHandler(t)

	status, resp := call(t, router, http.MethodPost, "/api/users", map[string]any{
		"email": "not-an-email", "password": "x", "role": "INTERN",
	})

	require.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing required fields", resp.Error)

	messages := map[string]string{}
	for _, d := range resp.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["name"])
	assert.Equal(t, "Invalid email format", messages["email"])
	assert.Equal(t, "Must be one of: EMPLOYEE MANAGER ADMIN", messages["role"])
}

func TestCreateUser_MalformedBody(t *testing.T) {
	_, router := setupTestHandler(t)

	status, resp := call(t, router, http.MethodPost, "/api/users", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", resp.Error)
}

func TestUpdateUser_PartialAndRehash(t *testing.T) {
	h, router := setupTestHandler(t)
	user := createUser(t, router, "Erin Employee", "erin@example.com", pto.RoleEmployee)

	status, resp := call(t, router, http.MethodPatch, "/api/users/"+user.ID, map[string]any{
		"role": "MANAGER", "password": "new-secret",
	})

	require.Equal(t, http.StatusOK, status, resp.raw)
	updated := dataAs[UserDTO](t, resp)
	assert.Equal(t, "Erin Employee", updated.Name, "name untouched")
	assert.Equal(t, pto.RoleManager, updated.Role)

	stored, err := h.Store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-secret")))
}

func TestGetUser_NotFound(t *testing.T) {
	_, router := setupTestHandler(t)

	status, resp := call(t, router, http.MethodGet, "/api/users/missing", nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", resp.Error)
}

func TestDeleteUser_RemovesProfile(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")

	status, resp := call(t, router, http.MethodDelete, "/api/users/"+p.user.ID, nil)
	require.Equal(t, http.StatusOK, status, resp.raw)
	assert.Equal(t, "User deleted successfully", resp.Message)

	status, _ = call(t, router, http.MethodGet, "/api/employees/"+p.employee.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListUsers_Count(t *testing.T) {
	_, router := setupTestHandler(t)
	setupPeople(t, router, "")

	status, resp := call(t, router, http.MethodGet, "/api/users", nil)

	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 2, *resp.Count)
	assert.Len(t, dataAs[[]UserDTO](t, resp), 2)
}

// =============================================================================
// EMPLOYEES, TEAMS, POLICIES
// =============================================================================

func TestCreateEmployee_JoinsUserAndManager(t *testing.T) {
	_, router := setupTestHandler(t)
	manager := createUser(t, router, "Morgan Manager", "manager@example.com", pto.RoleManager)
	user := createUser(t, router, "Erin Employee", "erin@example.com", pto.RoleEmployee)

	status, resp := call(t, router, http.MethodPost, "/api/employees", map[string]any{
		"userId": user.ID, "startDate": "2024-03-01", "managerId": manager.ID,
	})

	require.Equal(t, http.StatusCreated, status, resp.raw)
	e := dataAs[EmployeeDTO](t, resp)
	require.NotNil(t, e.User)
	assert.Equal(t, "Erin Employee", e.User.Name)
	require.NotNil(t, e.Manager)
	assert.Equal(t, "Morgan Manager", e.Manager.Name)
	require.NotNil(t, e.StartDate)
	assert.Equal(t, "2024-03-01T00:00:00Z", *e.StartDate)
}

func TestCreateEmployee_UnknownUserIsInvalidReference(t *testing.T) {
	_, router := setupTestHandler(t)

	status, resp := call(t, router, http.MethodPost, "/api/employees", map[string]any{"userId": "ghost"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid reference", resp.Error)
}

func TestCreateEmployee_BadStartDate(t *testing.T) {
	_, router := setupTestHandler(t)
	user := createUser(t, router, "Erin Employee", "erin@example.com", pto.RoleEmployee)

	status, resp := call(t, router, http.MethodPost, "/api/employees", map[string]any{
		"userId": user.ID, "startDate": "March 1st",
	})

	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "startDate", resp.Details[0].Field)
}

func TestUpdateEmployee_EmptyStringClearsManager(t *testing.T) {
	_, router := setupTestHandler(t)
	manager := createUser(t, router, "Morgan Manager", "manager@example.com", pto.RoleManager)
	user := createUser(t, router, "Erin Employee", "erin@example.com", pto.RoleEmployee)
	_, resp := call(t, router, http.MethodPost, "/api/employees", map[string]any{
		"userId": user.ID, "managerId": manager.ID,
	})
	e := dataAs[EmployeeDTO](t, resp)

	status, resp := call(t, router, http.MethodPatch, "/api/employees/"+e.ID, map[string]any{
		"managerId": "", "title": "Staff Engineer",
	})

	require.Equal(t, http.StatusOK, status, resp.raw)
	updated := dataAs[EmployeeDTO](t, resp)
	assert.Nil(t, updated.ManagerID)
	assert.Nil(t, updated.Manager)
	assert.Equal(t, "Staff Engineer", updated.Title)
}

func TestTeams_CreateWithMembers(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")

	status, resp := call(t, router, http.MethodPost, "/api/teams", map[string]any{
		"name": "Engineering", "description": "Builds product", "managerId": p.manager.ID,
	})
	require.Equal(t, http.StatusCreated, status, resp.raw)
	team := dataAs[TeamDTO](t, resp)
	assert.Empty(t, team.Members)

	status, _ = call(t, router, http.MethodPatch, "/api/employees/"+p.employee.ID, map[string]any{"teamId": team.ID})
	require.Equal(t, http.StatusOK, status)

	_, resp = call(t, router, http.MethodGet, "/api/teams/"+team.ID, nil)
	team = dataAs[TeamDTO](t, resp)
	require.Len(t, team.Members, 1)
	assert.Equal(t, "Erin Employee", team.Members[0].User.Name)
	require.NotNil(t, team.Manager)
	assert.Equal(t, "Morgan Manager", team.Manager.Name)

	status, resp = call(t, router, http.MethodPost, "/api/teams", map[string]any{"name": "Engineering"})
	assert.Equal(t, http.StatusConflict, status, resp.raw)
}

func TestPolicies_Validation(t *testing.T) {
	_, router := setupTestHandler(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing rate", map[string]any{"name": "P", "carryoverMax": 40, "effectiveOn": "2025-01-01"}, "accrualHrsMo"},
		{"negative rate", map[string]any{"name": "P", "accrualHrsMo": -1, "carryoverMax": 40, "effectiveOn": "2025-01-01"}, "accrualHrsMo"},
		{"negative cap", map[string]any{"name": "P", "accrualHrsMo": 6.67, "carryoverMax": -5, "effectiveOn": "2025-01-01"}, "carryoverMax"},
		{"bad date", map[string]any{"name": "P", "accrualHrsMo": 6.67, "carryoverMax": 40, "effectiveOn": "soon"}, "effectiveOn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := call(t, router, http.MethodPost, "/api/policies", tt.body)

			require.Equal(t, http.StatusBadRequest, status, resp.raw)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.field, resp.Details[0].Field)
		})
	}
}

func TestPolicies_DecimalRoundTrip(t *testing.T) {
	_, router := setupTestHandler(t)
	policy := createPolicy(t, router)

	assert.Equal(t, 6.67, policy.AccrualHrsMo)
	assert.Equal(t, 40.0, policy.CarryoverMax)
	assert.Equal(t, "2025-01-01T00:00:00Z", policy.EffectiveOn)
}

func TestDeletePolicy_InUseIsConflict(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	policy := createPolicy(t, router)
	status, resp := call(t, router, http.MethodPost, "/api/balances", map[string]any{
		"employeeId": p.employee.ID, "year": 2025, "policyId": policy.ID, "accrued": 40,
	})
	require.Equal(t, http.StatusCreated, status, resp.raw)

	status, resp = call(t, router, http.MethodDelete, "/api/policies/"+policy.ID, nil)

	assert.Equal(t, http.StatusConflict, status, resp.raw)
}

// =============================================================================
// BALANCE RECORDS
// =============================================================================

func TestCreateBalance_Rules(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	policy := createPolicy(t, router)

	base := func(mod map[string]any) map[string]any {
		body := map[string]any{"employeeId": p.employee.ID, "year": 2025, "policyId": policy.ID}
		for k, v := range mod {
			body[k] = v
		}
		return body
	}

	status, resp := call(t, router, http.MethodPost, "/api/balances", base(map[string]any{"year": 1999}))
	assert.Equal(t, http.StatusBadRequest, status, resp.raw)

	status, resp = call(t, router, http.MethodPost, "/api/balances", base(map[string]any{"used": -1}))
	assert.Equal(t, http.StatusBadRequest, status, resp.raw)

	status, resp = call(t, router, http.MethodPost, "/api/balances", base(map[string]any{"accrued": 40, "used": 8, "carryover": 12}))
	require.Equal(t, http.StatusCreated, status, resp.raw)
	b := dataAs[BalanceDTO](t, resp)
	assert.Equal(t, "US-Standard", b.PolicyName)
	assert.Equal(t, "Erin Employee", b.EmployeeName)

	status, resp = call(t, router, http.MethodPost, "/api/balances", base(nil))
	assert.Equal(t, http.StatusConflict, status, "one record per employee and year")

	status, resp = call(t, router, http.MethodGet, "/api/balances?employeeId="+p.employee.ID+"&year=2025", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, *resp.Count)

	status, _ = call(t, router, http.MethodGet, "/api/balances?year=twenty", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestCreateRequest_DefaultsToDraft(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")

	status, resp := call(t, router, http.MethodPost, "/api/requests", map[string]any{
		"employeeId": p.employee.ID, "startDate": "2025-02-14", "endDate": "2025-02-15", "hours": 8,
	})

	require.Equal(t, http.StatusCreated, status, resp.raw)
	r := dataAs[RequestDTO](t, resp)
	assert.Equal(t, pto.StatusDraft, r.Status)
	assert.Equal(t, "Erin Employee", r.EmployeeName)
	assert.Equal(t, 8.0, r.Hours)
	assert.Nil(t, r.ApproverID)
}

func TestCreateRequest_Rules(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")

	tests := []struct {
		name      string
		body      map[string]any
		wantError string
	}{
		{"end before start", map[string]any{"startDate": "2025-02-15", "endDate": "2025-02-14", "hours": 8}, "Invalid input"},
		{"same day", map[string]any{"startDate": "2025-02-14", "endDate": "2025-02-14", "hours": 8}, "Invalid input"},
		{"zero hours", map[string]any{"startDate": "2025-02-14", "endDate": "2025-02-15", "hours": 0}, "Invalid input"},
		{"approved on create", map[string]any{"startDate": "2025-02-14", "endDate": "2025-02-15", "hours": 8, "status": "APPROVED"}, "Invalid request status"},
		{"unknown status", map[string]any{"startDate": "2025-02-14", "endDate": "2025-02-15", "hours": 8, "status": "PENDING"}, "Invalid input"},
		{"missing hours", map[string]any{"startDate": "2025-02-14", "endDate": "2025-02-15"}, "Missing required fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.body["employeeId"] = p.employee.ID
			status, resp := call(t, router, http.MethodPost, "/api/requests", tt.body)

			assert.Equal(t, http.StatusBadRequest, status, resp.raw)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestCreateRequest_UnknownEmployee(t *testing.T) {
	_, router := setupTestHandler(t)

	status, resp := call(t, router, http.MethodPost, "/api/requests", map[string]any{
		"employeeId": "ghost", "startDate": "2025-02-14", "endDate": "2025-02-15", "hours": 8,
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid reference", resp.Error)
}

func TestUpdateRequest_DraftToSubmitted(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusDraft)

	status, resp := call(t, router, http.MethodPatch, "/api/requests/"+r.ID, map[string]any{
		"status": "SUBMITTED", "note": "Long weekend",
	})

	require.Equal(t, http.StatusOK, status, resp.raw)
	updated := dataAs[RequestDTO](t, resp)
	assert.Equal(t, pto.StatusSubmitted, updated.Status)
	assert.Equal(t, "Long weekend", updated.Note)
}

func TestListRequests_Filters(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusSubmitted)
	createRequest(t, router, p.employee.ID, "2025-03-14", "2025-03-15", 8, pto.StatusDraft)
	createRequest(t, router, p.employee.ID, "2024-12-30", "2024-12-31", 8, pto.StatusSubmitted)

	_, resp := call(t, router, http.MethodGet, "/api/requests?status=SUBMITTED&year=2025", nil)
	assert.Equal(t, 1, *resp.Count)

	_, resp = call(t, router, http.MethodGet, "/api/requests?employeeId="+p.employee.ID, nil)
	assert.Equal(t, 3, *resp.Count)

	status, resp := call(t, router, http.MethodGet, "/api/requests?status=PENDING", nil)
	assert.Equal(t, http.StatusBadRequest, status, resp.raw)
}

// =============================================================================
// APPROVAL
// =============================================================================

func TestApproveRequest_ByManager(t *testing.T) {
	// GIVEN: A submitted request
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusSubmitted)

	// WHEN: The manager approves it with a note
	status, resp := call(t, router, http.MethodPost, "/api/requests/"+r.ID+"/approve", map[string]any{
		"approverId": p.manager.ID, "note": "Enjoy",
	})

	// THEN: It is APPROVED with the approver recorded
	require.Equal(t, http.StatusOK, status, resp.raw)
	assert.Equal(t, "PTO request approved successfully", resp.Message)
	approved := dataAs[RequestDTO](t, resp)
	assert.Equal(t, pto.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApproverID)
	assert.Equal(t, p.manager.ID, *approved.ApproverID)
	require.NotNil(t, approved.Approver)
	assert.Equal(t, "Morgan Manager", approved.Approver.Name)
	assert.Equal(t, "Enjoy", approved.Note)
}

func TestRejectRequest_ByAdmin(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	admin := createUser(t, router, "Ada Admin", "admin@example.com", pto.RoleAdmin)
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusSubmitted)

	status, resp := call(t, router, http.MethodPost, "/api/requests/"+r.ID+"/reject", map[string]any{
		"approverId": admin.ID,
	})

	require.Equal(t, http.StatusOK, status, resp.raw)
	assert.Equal(t, pto.StatusRejected, dataAs[RequestDTO](t, resp).Status)
}

func TestApproveRequest_ByEmployeeIsForbidden(t *testing.T) {
	// GIVEN: A submitted request
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusSubmitted)

	// WHEN: An EMPLOYEE tries to approve it
	status, resp := call(t, router, http.MethodPost, "/api/requests/"+r.ID+"/approve", map[string]any{
		"approverId": p.user.ID,
	})

	// THEN: 403 and the request is unchanged
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unauthorized", resp.Error)
	assert.Contains(t, resp.Message, "only managers and admins")

	_, resp = call(t, router, http.MethodGet, "/api/requests/"+r.ID, nil)
	assert.Equal(t, pto.StatusSubmitted, dataAs[RequestDTO](t, resp).Status)
}

func TestApproveRequest_UnknownApproverIsForbidden(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusSubmitted)

	status, _ := call(t, router, http.MethodPost, "/api/requests/"+r.ID+"/approve", map[string]any{
		"approverId": "ghost",
	})

	assert.Equal(t, http.StatusForbidden, status)
}

func TestApproveRequest_OnlySubmitted(t *testing.T) {
	// GIVEN: A DRAFT request
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusDraft)

	// WHEN: The manager approves it
	status, resp := call(t, router, http.MethodPost, "/api/requests/"+r.ID+"/approve", map[string]any{
		"approverId": p.manager.ID,
	})

	// THEN: 400, invalid status
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request status", resp.Error)
	assert.Contains(t, resp.Message, "only submitted requests can be approved")
}

func TestApproveRequest_MissingApprover(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusSubmitted)

	status, resp := call(t, router, http.MethodPost, "/api/requests/"+r.ID+"/approve", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "approverId", resp.Details[0].Field)
}

func TestApproveRequest_NotFound(t *testing.T) {
	_, router := setupTestHandler(t)
	manager := createUser(t, router, "Morgan Manager", "manager@example.com", pto.RoleManager)

	status, resp := call(t, router, http.MethodPost, "/api/requests/missing/approve", map[string]any{
		"approverId": manager.ID,
	})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PTO request not found", resp.Error)
}

func TestUpdateRequest_DecidedStatusIsFinal(t *testing.T) {
	_, router := setupTestHandler(t)
	p := setupPeople(t, router, "")
	r := createRequest(t, router, p.employee.ID, "2025-02-14", "2025-02-15", 8, pto.StatusSubmitted)
	status, _ := call(t, router, http.MethodPost, "/api/requests/"+r.ID+"/approve", map[string]any{"approverId": p.manager.ID})
	require.Equal(t, http.StatusOK, status)

	status, resp := call(t, router, http.MethodPatch, "/api/requests/"+r.ID, map[string]any{"status": "DRAFT"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request status", resp.Error)
}
