package dto

import "net/http"

// Error codes returned in the response envelope. Codes are stable API
// surface; clients switch on them, so renaming one is a breaking change.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"

	// Status lifecycle violations are client mistakes, not server state,
	// so both map to 400 rather than 422.
	ErrCodeInvalidTransition  = "ERR_INVALID_TRANSITION"
	ErrCodeNoCommonTransition = "ERR_NO_COMMON_TRANSITION"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeInvalidTransition:  http.StatusBadRequest,
	ErrCodeNoCommonTransition: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INVALID_TRANSITION":   ErrCodeInvalidTransition,
	"NO_COMMON_TRANSITION": ErrCodeNoCommonTransition,
}

// NormalizeErrorCode converts a domain error code to its API error code.
// Unrecognized codes fall through unchanged so new domain codes surface
// verbatim instead of being masked as internal errors.
func NormalizeErrorCode(code string) string {
	if normalized, ok := domainErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}
