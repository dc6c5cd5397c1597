package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &domain.APIError{
		Code:    status,
		Message: message,
	})
}

// handleError converts domain errors to HTTP errors. Messages come from the
// domain's user-facing translation so raw store errors never leak upward.
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "Group code is required")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "Group not found")
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, "Only the group owner can do that")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "You must be signed in")
	case errors.Is(err, domain.ErrAllocationExhausted):
		respondError(w, http.StatusConflict, domain.UserMessage(err))
	case errors.Is(err, domain.ErrStorePermissionDenied):
		respondError(w, http.StatusForbidden, domain.UserMessage(err))
	case errors.Is(err, domain.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, domain.UserMessage(err))
	case errors.Is(err, domain.ErrStoreTimeout):
		respondError(w, http.StatusGatewayTimeout, domain.UserMessage(err))
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes JSON from request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}
