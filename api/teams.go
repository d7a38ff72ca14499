package api

import (
	"net/http"

	"github.com/warp/pto-tracker/pto"
)

// =============================================================================
// TEAM ENDPOINTS
// =============================================================================

// ListTeams returns all teams with manager and members.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Store.ListTeams(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch teams")
		return
	}

	dtos := make([]TeamDTO, 0, len(teams))
	for _, t := range teams {
		dtos = append(dtos, toTeamDTO(t))
	}
	writeList(w, dtos, "")
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.Store.GetTeam(r.Context(), pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Team not found", "Failed to fetch team")
		return
	}
	writeData(w, http.StatusOK, toTeamDTO(*t), "")
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	t := pto.Team{Name: req.Name, Description: req.Description, ManagerID: optionalRef(req.ManagerID)}
	if err := h.Store.CreateTeam(ctx, &t); err != nil {
		h.fail(w, r, err, "Failed to create team")
		return
	}

	created, err := h.Store.GetTeam(ctx, t.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to create team")
		return
	}
	writeData(w, http.StatusCreated, toTeamDTO(*created), "Team created successfully")
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req UpdateTeamRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	t, err := h.Store.GetTeam(ctx, pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "Team not found", "Failed to update team")
		return
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.ManagerID != nil {
		t.ManagerID = optionalRef(req.ManagerID)
	}

	if err := h.Store.UpdateTeam(ctx, t); err != nil {
		h.fail(w, r, err, "Failed to update team")
		return
	}

	updated, err := h.Store.GetTeam(ctx, t.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to update team")
		return
	}
	writeData(w, http.StatusOK, toTeamDTO(*updated), "Team updated successfully")
}

// DeleteTeam removes a team. Members stay, without a team.
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteTeam(r.Context(), pathID(r)); err != nil {
		h.notFoundOr(w, r, err, "Team not found", "Failed to delete team")
		return
	}
	writeMessage(w, "Team deleted successfully")
}
