package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crhubottom/school-flow-project/internal/api/middleware"
	"github.com/crhubottom/school-flow-project/internal/domain"
	"github.com/crhubottom/school-flow-project/internal/service"
)

// GroupHandler handles group endpoints.
type GroupHandler struct {
	groups *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups *service.GroupService) *GroupHandler {
	return &GroupHandler{groups: groups}
}

// Create creates a new group owned by the caller.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())

	var req domain.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), principal, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, group)
}

// List lists the groups the caller belongs to.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())

	groups, err := h.groups.ListUserGroups(r.Context(), principal)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, groups)
}

// Get fetches a group by its join code.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	group, err := h.groups.GetGroup(r.Context(), code)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, group)
}

// Join adds the caller to a group's member set.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	code := chi.URLParam(r, "code")

	group, err := h.groups.JoinGroup(r.Context(), principal, code)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, group)
}

// Update renames a group (owner only).
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	code := chi.URLParam(r, "code")

	var req domain.UpdateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.groups.UpdateGroupName(r.Context(), principal, code, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, group)
}

// Delete deletes a group (owner only) and confirms with the normalized code.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	code := chi.URLParam(r, "code")

	id, err := h.groups.DeleteGroup(r.Context(), principal, code)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.DeleteGroupResponse{ID: id})
}
