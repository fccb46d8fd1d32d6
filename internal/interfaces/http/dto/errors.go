package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain error codes pass
// through unchanged and are mapped to status codes below.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound: http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"EMAIL_TAKEN":          http.StatusConflict,
	"TIER_NAME_TAKEN":      http.StatusConflict,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,

	ErrCodeForbidden:        http.StatusForbidden,
	"FEATURE_NOT_AVAILABLE": http.StatusForbidden,

	"QUOTA_EXCEEDED": http.StatusTooManyRequests,

	"SEAT_LIMIT_REACHED":       http.StatusUnprocessableEntity,
	"INVALID_STATE":            http.StatusUnprocessableEntity,
	"TIER_IN_USE":              http.StatusUnprocessableEntity,
	"DEFAULT_TIER_UNDELETABLE": http.StatusUnprocessableEntity,
	"OWNER_ROLE_IMMUTABLE":     http.StatusUnprocessableEntity,
	"OWNER_IRREMOVABLE":        http.StatusUnprocessableEntity,
	"BILLING_ACCOUNT_INACTIVE": http.StatusUnprocessableEntity,
	"TIER_NOT_ACTIVE":          http.StatusUnprocessableEntity,
	"NO_TIER_AVAILABLE":        http.StatusUnprocessableEntity,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	"INVALID_INPUT":   http.StatusBadRequest,

	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,
	ErrCodeInternal:       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code. Codes from
// entity validation all start with INVALID_ and map to 400; anything
// unknown is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
