package common

import (
	"errors"
	"net/http"
)

// Sentinel errors for the entitlement core. Handlers translate these into the
// standard error envelope; everything else is a server error.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateRequest = errors.New("a pending change request already exists")
	ErrExpired          = errors.New("subscription has expired")
	ErrForbidden        = errors.New("forbidden")
)

// Stable error code strings returned to clients.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeDuplicateRequest = "DUPLICATE_REQUEST"
	CodeExpired          = "SUBSCRIPTION_EXPIRED"
	CodeForbidden        = "FORBIDDEN"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeServerError      = "SERVER_ERROR"
)

// ErrorCode maps a core error to its stable client-facing code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrDuplicateRequest):
		return CodeDuplicateRequest
	case errors.Is(err, ErrExpired):
		return CodeExpired
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	default:
		return CodeServerError
	}
}

// HTTPStatus maps a core error to an HTTP status code. Storage and unknown
// failures surface as 500; they are never swallowed.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
