package dto

import (
	"net/http"
	"strings"
)

// Error codes sent to clients. Domain error codes pass through unchanged; the
// ones below are also produced directly by handlers and middleware.

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeTransactionFailed is used when a ledger transaction could not commit
	ErrCodeTransactionFailed = "TRANSACTION_FAILED"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeInvalidCredentials is used when login fails
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the token was logged out
	ErrCodeTokenRevoked = "TOKEN_REVOKED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeDuplicateRequest is used when an idempotency key is replayed
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInsufficientStock is used when stock is insufficient
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// Optional backend error codes
const (
	ErrCodePrintingUnavailable = "PRINTING_UNAVAILABLE"
	ErrCodeStorageUnavailable  = "STORAGE_UNAVAILABLE"
	ErrCodeRenderFailed        = "RENDER_FAILED"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeTransactionFailed: http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR":    http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	"FILE_TOO_LARGE":        http.StatusRequestEntityTooLarge,
	"INVALID_CONTENT_TYPE":  http.StatusUnsupportedMediaType,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":       http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeDuplicateRequest: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	// Optional backends
	ErrCodePrintingUnavailable: http.StatusServiceUnavailable,
	ErrCodeStorageUnavailable:  http.StatusServiceUnavailable,
	ErrCodeRenderFailed:        http.StatusInternalServerError,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field-level codes (INVALID_NAME, INVALID_QUANTITY, ...) map to 400 and
// TOKEN_* codes to 401. Anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "TOKEN_"):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// genericMessages replaces domain messages that must not reach clients
var genericMessages = map[string]string{
	ErrCodeTransactionFailed: "The operation could not be completed, please retry",
	ErrCodeInternal:          "An unexpected error occurred",
	"PASSWORD_HASH_ERROR":    "An unexpected error occurred",
}

// PublicMessage returns the message shown to clients for an error code
func PublicMessage(code, message string) string {
	if generic, ok := genericMessages[code]; ok {
		return generic
	}
	return message
}
