package api

import (
	"net/http"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employee profiles with user, manager and team.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch employees")
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeList(w, dtos, "")
}

// GetEmployee returns a single employee profile.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.Store.GetEmployee(r.Context(), pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Employee not found", "Failed to fetch employee")
		return
	}
	writeData(w, http.StatusOK, toEmployeeDTO(*e), "")
}

// CreateEmployee attaches a profile to an existing user. A user has at most
// one profile.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decode(w, r, &req) {
		return
	}

	e := pto.Employee{
		UserID:     req.UserID,
		Title:      req.Title,
		Department: req.Department,
		ManagerID:  optionalRef(req.ManagerID),
		TeamID:     optionalRef(req.TeamID),
	}
	if req.StartDate != nil {
		start, err := parseOptionalDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
		e.StartDate = start
	}

	ctx := r.Context()
	if err := h.Store.CreateEmployee(ctx, &e); err != nil {
		h.fail(w, r, err, "Failed to create employee")
		return
	}

	created, err := h.Store.GetEmployee(ctx, e.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to create employee")
		return
	}
	writeData(w, http.StatusCreated, toEmployeeDTO(*created), "Employee created successfully")
}

// UpdateEmployee applies the provided fields. The owning user cannot change.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req UpdateEmployeeRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	e, err := h.Store.GetEmployee(ctx, pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Employee not found", "Failed to update employee")
		return
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Department != nil {
		e.Department = *req.Department
	}
	if req.StartDate != nil {
		start, err := parseOptionalDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
		e.StartDate = start
	}
	if req.ManagerID != nil {
		e.ManagerID = optionalRef(req.ManagerID)
	}
	if req.TeamID != nil {
		e.TeamID = optionalRef(req.TeamID)
	}

	if err := h.Store.UpdateEmployee(ctx, e); err != nil {
		h.fail(w, r, err, "Failed to update employee")
		return
	}

	updated, err := h.Store.GetEmployee(ctx, e.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to update employee")
		return
	}
	writeData(w, http.StatusOK, toEmployeeDTO(*updated), "Employee updated successfully")
}

// DeleteEmployee removes a profile with its balances and requests. The user
// account stays.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), pathID(r)); err != nil {
		h.notFoundOr(w, r, err, "Employee not found", "Failed to delete employee")
		return
	}
	writeMessage(w, "Employee deleted successfully")
}
