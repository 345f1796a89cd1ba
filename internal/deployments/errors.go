package deployments

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the requested deployment entry does not exist.
	ErrNotFound = errors.New("deployment not found")

	// ErrDuplicate indicates a uniqueness violation on insert.
	ErrDuplicate = errors.New("deployment already exists")

	// ErrInvalid indicates a malformed record command.
	ErrInvalid = errors.New("invalid deployment")
)

// MapHTTPStatus translates domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
