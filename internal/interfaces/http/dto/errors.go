package dto

import "net/http"

// Transport-level error codes. Domain codes come through unchanged from
// the application layer; these cover failures before a service is reached.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain and transport error codes to HTTP
// status codes. Validation and business rule failures map to 400,
// missing resources to 404, duplicate and stale-version conflicts to
// 409, everything unexpected to 500.
var errorCodeHTTPStatus = map[string]int{
	// Malformed or invalid input -> 400
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	"INVALID_INPUT":     http.StatusBadRequest,
	"INVALID_QUANTITY":  http.StatusBadRequest,
	"INVALID_THRESHOLD": http.StatusBadRequest,
	"INVALID_OPERATION": http.StatusBadRequest,
	"INVALID_NAME":      http.StatusBadRequest,
	"INVALID_ADDRESS":   http.StatusBadRequest,
	"INVALID_PHONE":     http.StatusBadRequest,
	"INVALID_PRICE":     http.StatusBadRequest,
	"INVALID_PRODUCT":   http.StatusBadRequest,
	"INVALID_WAREHOUSE": http.StatusBadRequest,
	"INVALID_ACTOR":     http.StatusBadRequest,
	"INVALID_TARGET":    http.StatusBadRequest,
	"EMPTY_UPDATE":      http.StatusBadRequest,

	// Auth -> 401 / 403
	ErrCodeUnauthorized: http.StatusUnauthorized,
	"TOKEN_EXPIRED":     http.StatusUnauthorized,
	"TOKEN_INVALID":     http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Missing resources -> 404
	ErrCodeNotFound: http.StatusNotFound,

	// Conflicts -> 409
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule violations are a validation kind -> 400
	"INVALID_STATE":         http.StatusBadRequest,
	"INSUFFICIENT_QUANTITY": http.StatusBadRequest,
	"PRODUCT_MISMATCH":      http.StatusBadRequest,
	"SELF_TRANSFER":         http.StatusBadRequest,
	"SAME_WAREHOUSE":        http.StatusBadRequest,
	"SAME_NAME":             http.StatusBadRequest,
	"CONTAINS_STOCK":        http.StatusBadRequest,
	"CONTAINS_PRODUCTS":     http.StatusBadRequest,
	"EMPTY_WAREHOUSE":       http.StatusBadRequest,

	// Failed or timed-out transactions -> 500
	"TRANSACTION_TIMEOUT": http.StatusInternalServerError,
	ErrCodeInternal:       http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 500 for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
