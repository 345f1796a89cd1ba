package intel

import (
	"errors"
	"net/http"
)

// Domain errors for intelligence record operations.
var (
	ErrNotFound        = errors.New("intel record not found")
	ErrDuplicate       = errors.New("intel record already exists")
	ErrInvalid         = errors.New("invalid intel record command")
	ErrInvalidSeverity = errors.New("invalid severity")
)

// MapHTTPStatus maps intel domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) || errors.Is(err, ErrInvalidSeverity) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
