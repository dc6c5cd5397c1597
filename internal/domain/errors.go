package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrAlreadyExists       = errors.New("already exists")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAllocationExhausted = errors.New("join code allocation exhausted")

	// Translated store errors. Storage backends map their raw provider
	// errors onto these at the call boundary; nothing above the storage
	// layer ever inspects a provider error code.
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrStoreTimeout          = errors.New("store timeout")
	ErrStorePermissionDenied = errors.New("store permission denied")
	ErrStoreInternal         = errors.New("store internal error")
)

// UserMessage returns a human-readable message for an error, suitable for
// direct display in the UI. Unrecognized errors pass through verbatim.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrStorePermissionDenied):
		return "Permission denied. Check that the signed-in user is allowed to perform this action."
	case errors.Is(err, ErrStoreUnavailable):
		return "Service unavailable. Try again later."
	case errors.Is(err, ErrStoreTimeout):
		return "Request timed out. Check your network connection."
	case errors.Is(err, ErrAllocationExhausted):
		return "Failed to generate a unique join code. Try again."
	default:
		return err.Error()
	}
}

// APIError represents an error response from the API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}
