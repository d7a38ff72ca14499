package api

import (
	"net/http"

	"github.com/warp/pto-tracker/generic"
	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// POLICY ENDPOINTS
// =============================================================================

// ListPolicies returns all policies, most recently effective first.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.Store.ListPolicies(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch policies")
		return
	}

	dtos := make([]PolicyDTO, 0, len(policies))
	for _, p := range policies {
		dtos = append(dtos, toPolicyDTO(p))
	}
	writeList(w, dtos, "")
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetPolicy(r.Context(), pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Policy not found", "Failed to fetch policy")
		return
	}
	writeData(w, http.StatusOK, toPolicyDTO(*p), "")
}

// CreatePolicy stores a new accrual policy. Rates must be non-negative.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if !decode(w, r, &req) {
		return
	}

	effective, err := generic.ParseTime(req.EffectiveOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective date", err)
		return
	}

	p := pto.Policy{
		Name:            req.Name,
		AccrualPerMonth: hoursOf(req.AccrualHrsMo),
		CarryoverMax:    hoursOf(req.CarryoverMax),
		EffectiveOn:     effective,
	}
	if err := p.Validate(); err != nil {
		h.fail(w, r, err, "Failed to create policy")
		return
	}

	if err := h.Store.CreatePolicy(r.Context(), &p); err != nil {
		h.fail(w, r, err, "Failed to create policy")
		return
	}
	writeData(w, http.StatusCreated, toPolicyDTO(p), "Policy created successfully")
}

func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req UpdatePolicyRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	p, err := h.Store.GetPolicy(ctx, pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Policy not found", "Failed to update policy")
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.AccrualHrsMo != nil {
		p.AccrualPerMonth = hoursOf(req.AccrualHrsMo)
	}
	if req.CarryoverMax != nil {
		p.CarryoverMax = hoursOf(req.CarryoverMax)
	}
	if req.EffectiveOn != nil {
		effective, err := generic.ParseTime(*req.EffectiveOn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid effective date", err)
			return
		}
		p.EffectiveOn = effective
	}
	if err := p.Validate(); err != nil {
		h.fail(w, r, err, "Failed to update policy")
		return
	}

	if err := h.Store.UpdatePolicy(ctx, p); err != nil {
		h.fail(w, r, err, "Failed to update policy")
		return
	}
	writeData(w, http.StatusOK, toPolicyDTO(*p), "Policy updated successfully")
}

// DeletePolicy removes a policy. Policies referenced by balances cannot be
// deleted (409).
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePolicy(r.Context(), pathID(r)); err != nil {
		h.notFoundOr(w, r, err, "Policy not found", "Failed to delete policy")
		return
	}
	writeMessage(w, "Policy deleted successfully")
}
