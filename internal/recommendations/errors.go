package recommendations

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the requested recommendation does not exist.
	ErrNotFound = errors.New("recommendation not found")

	// ErrDuplicate indicates a uniqueness violation on insert.
	ErrDuplicate = errors.New("recommendation already exists")

	// ErrInvalid indicates a malformed generation command.
	ErrInvalid = errors.New("invalid recommendation command")

	// ErrInvalidWindow indicates a non-positive or malformed look-back window.
	ErrInvalidWindow = errors.New("look-back window must be positive")

	// ErrNoSignal indicates generation found nothing to recommend: an empty
	// threat window or no worthwhile saving. It is an outcome, not a failure.
	ErrNoSignal = errors.New("no recommendation signal")

	// ErrUpstream indicates a collaborator (record store, usage snapshots)
	// could not serve the request.
	ErrUpstream = errors.New("upstream unavailable")
)

// MapHTTPStatus translates domain errors to HTTP status codes. ErrNoSignal
// maps to 204: the request succeeded, there is simply nothing to report.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoSignal):
		return http.StatusNoContent
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
