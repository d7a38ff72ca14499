package api

import (
	"net/http"

	"github.com/warp/pto-tracker/pto"
	"go.uber.org/zap"
)

// =============================================================================
// USER ENDPOINTS
// =============================================================================

// ListUsers returns all users, newest first.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch users")
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	writeList(w, dtos, "")
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetUser(r.Context(), pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "User not found", "Failed to fetch user")
		return
	}
	writeData(w, http.StatusOK, toUserDTO(*u), "")
}

// CreateUser hashes the password and stores a new user. The role defaults
// to EMPLOYEE.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decode(w, r, &req) {
		return
	}

	role, err := pto.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid role", err)
		return
	}
	hash, err := h.hashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err, "Failed to create user")
		return
	}

	u := pto.User{Name: req.Name, Email: req.Email, PasswordHash: hash, Role: role}
	if err := h.Store.CreateUser(r.Context(), &u); err != nil {
		h.fail(w, r, err, "Failed to create user")
		return
	}

	h.Log.Info("user created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	writeData(w, http.StatusCreated, toUserDTO(u), "User created successfully")
}

// UpdateUser applies the provided fields. A new password is re-hashed.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	u, err := h.Store.GetUser(ctx, pathID(r))
	if err != nil {
		h.notFoundOr(w, r, err, "User not found", "Failed to update user")
		return
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		role, err := pto.ParseRole(*req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid role", err)
			return
		}
		u.Role = role
	}
	if req.Password != nil {
		hash, err := h.hashPassword(*req.Password)
		if err != nil {
			h.fail(w, r, err, "Failed to update user")
			return
		}
		u.PasswordHash = hash
	}

	if err := h.Store.UpdateUser(ctx, u); err != nil {
		h.fail(w, r, err, "Failed to update user")
		return
	}
	writeData(w, http.StatusOK, toUserDTO(*u), "User updated successfully")
}

// DeleteUser removes a user along with their employee profile.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		h.notFoundOr(w, r, err, "User not found", "Failed to delete user")
		return
	}

	h.Log.Info("user deleted", zap.String("user_id", id))
	writeMessage(w, "User deleted successfully")
}
