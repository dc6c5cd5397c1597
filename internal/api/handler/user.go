package handler

import (
	"net/http"

	"github.com/crhubottom/school-flow-project/internal/api/middleware"
	"github.com/crhubottom/school-flow-project/internal/domain"
	"github.com/crhubottom/school-flow-project/internal/service"
)

// UserHandler handles mirrored profile endpoints.
type UserHandler struct {
	groups *service.GroupService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(groups *service.GroupService) *UserHandler {
	return &UserHandler{groups: groups}
}

// Lookup fetches mirrored profiles for a batch of uids. Uids with no stored
// profile map to null rather than failing the request.
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req domain.LookupUsersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	users, err := h.groups.GetUsers(r.Context(), req.UIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// Me returns the caller's own mirrored profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "You must be signed in")
		return
	}

	users, err := h.groups.GetUsers(r.Context(), []string{principal.UID})
	if err != nil {
		handleError(w, err)
		return
	}

	profile := users[principal.UID]
	if profile == nil {
		// The mirror is asynchronous, so a fresh sign-in may not have a
		// stored profile yet. Fall back to the principal itself.
		respondJSON(w, http.StatusOK, principal.Profile())
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
