package billing

import (
	"errors"
	"net/http"
)

// Domain errors for billing operations.
var (
	ErrNotFound      = errors.New("subscription not found")
	ErrDuplicate     = errors.New("subscription already exists")
	ErrInvalid       = errors.New("invalid subscription command")
	ErrInvalidTier   = errors.New("invalid tier")
	ErrTierNotPriced = errors.New("tier missing from pricing table")
)

// MapHTTPStatus maps billing domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) || errors.Is(err, ErrInvalidTier) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrTierNotPriced) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
