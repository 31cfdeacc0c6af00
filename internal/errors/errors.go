package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Request errors (400xx)
	ErrValidationFailed ErrorCode = "40002"
	ErrInvalidLocation  ErrorCode = "40003"

	// Authentication errors (401xx)
	ErrTokenExpired ErrorCode = "40102"
	ErrInvalidToken ErrorCode = "40103"

	// Resource errors (404xx)
	ErrNotFound         ErrorCode = "40401"
	ErrProviderNotFound ErrorCode = "40402"
	ErrJobNotFound      ErrorCode = "40403"

	// Conflict errors (409xx)
	ErrSearchSuperseded ErrorCode = "40901"

	// Rate limit errors (429xx)
	ErrRateLimited ErrorCode = "42901"

	// Server errors (500xx)
	ErrInternalServer ErrorCode = "50001"
	ErrDatabaseError  ErrorCode = "50002"

	// Store read failures during a search (503xx)
	ErrFetchFailed ErrorCode = "50302"
)

// APIError represents a standardized API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
	Timestamp  time.Time `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// WithDetails returns a copy of the error carrying details
func (e *APIError) WithDetails(details any) *APIError {
	cp := *e
	cp.Details = details
	cp.Timestamp = time.Now().UTC()
	return &cp
}

// ErrorDetail is the error object inside an ErrorResponse
type ErrorDetail struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp string    `json:"timestamp"`
	Path      string    `json:"path,omitempty"`
	Method    string    `json:"method,omitempty"`
	// Retryable tells clients the same request may succeed later
	Retryable bool `json:"retryable,omitempty"`
}

// ErrorResponse represents the error response format
type ErrorResponse struct {
	Error         ErrorDetail `json:"error"`
	RequestID     string      `json:"request_id"`
	CorrelationID string      `json:"correlation_id"`
}

// NewErrorResponse builds the response envelope for err
func NewErrorResponse(err *APIError, requestID, correlationID, path, method string) *ErrorResponse {
	ts := err.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Timestamp: ts.Format(time.RFC3339),
			Path:      path,
			Method:    method,
			Retryable: IsRetryable(err),
		},
		RequestID:     requestID,
		CorrelationID: correlationID,
	}
}

// Common errors
var (
	ErrInvalidLocationError = &APIError{
		Code:       ErrInvalidLocation,
		Message:    "Invalid location coordinates",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenExpiredError = &APIError{
		Code:       ErrTokenExpired,
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidTokenError = &APIError{
		Code:       ErrInvalidToken,
		Message:    "Invalid token",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrNotFoundError = &APIError{
		Code:       ErrNotFound,
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrProviderNotFoundError = &APIError{
		Code:       ErrProviderNotFound,
		Message:    "Provider not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrJobNotFoundError = &APIError{
		Code:       ErrJobNotFound,
		Message:    "Job not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrSearchSupersededError = &APIError{
		Code:       ErrSearchSuperseded,
		Message:    "Search superseded by a newer request",
		HTTPStatus: http.StatusConflict,
	}

	ErrInternalServerError = &APIError{
		Code:       ErrInternalServer,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrDatabaseErrorError = &APIError{
		Code:       ErrDatabaseError,
		Message:    "Database error",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrFetchFailedError = &APIError{
		Code:       ErrFetchFailed,
		Message:    "Failed to load services. Please try again.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// NewValidationError creates a validation error with details
func NewValidationError(details any) *APIError {
	return &APIError{
		Code:       ErrValidationFailed,
		Message:    "Validation failed",
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
		Timestamp:  time.Now().UTC(),
	}
}

// NewRateLimitError creates a rate limit error with the retry delay
func NewRateLimitError(retryAfterSeconds int64) *APIError {
	return &APIError{
		Code:       ErrRateLimited,
		Message:    fmt.Sprintf("Rate limit exceeded, retry in %d seconds", retryAfterSeconds),
		Details:    map[string]int64{"retry_after_seconds": retryAfterSeconds},
		HTTPStatus: http.StatusTooManyRequests,
		Timestamp:  time.Now().UTC(),
	}
}

// GetHTTPStatusFromCode maps an error code to its HTTP status
func GetHTTPStatusFromCode(code ErrorCode) int {
	switch code {
	case ErrValidationFailed, ErrInvalidLocation:
		return http.StatusBadRequest
	case ErrTokenExpired, ErrInvalidToken:
		return http.StatusUnauthorized
	case ErrNotFound, ErrProviderNotFound, ErrJobNotFound:
		return http.StatusNotFound
	case ErrSearchSuperseded:
		return http.StatusConflict
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrFetchFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the client may retry the same request later
func IsRetryable(err *APIError) bool {
	switch err.Code {
	case ErrRateLimited, ErrFetchFailed:
		return true
	}
	return false
}
