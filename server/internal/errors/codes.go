package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for review operations.
type ErrorCode string

const (
	// ErrCodeInvalidQuality indicates a quality rating outside the 1..5 scale.
	ErrCodeInvalidQuality ErrorCode = "INVALID_QUALITY"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidFilter indicates a card filter expression that does not compile.
	ErrCodeInvalidFilter ErrorCode = "INVALID_FILTER"
	// ErrCodeCardNotFound indicates the requested card does not exist.
	ErrCodeCardNotFound ErrorCode = "CARD_NOT_FOUND"
	// ErrCodeSessionAlreadyActive indicates a tracker that already owns an active session.
	ErrCodeSessionAlreadyActive ErrorCode = "SESSION_ALREADY_ACTIVE"
	// ErrCodeSessionNotActive indicates an answer arriving outside an active session.
	ErrCodeSessionNotActive ErrorCode = "SESSION_NOT_ACTIVE"
	// ErrCodeAnalyticsUnavailable indicates a failed analytics sink call.
	ErrCodeAnalyticsUnavailable ErrorCode = "ANALYTICS_UNAVAILABLE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeStoreUnavailable indicates the backing store is not reachable.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// ReviewError represents a structured error for review operations.
type ReviewError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ReviewError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ReviewError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *ReviewError) WithContext(key string, value interface{}) *ReviewError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetCode returns the error code.
func (e *ReviewError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidQuality creates an invalid quality rating error.
func InvalidQuality(quality int) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeInvalidQuality,
		Message: fmt.Sprintf("quality rating must be between 1 and 5, got %d", quality),
	}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ReviewError {
	return &ReviewError{Code: ErrCodeInvalidArgument, Message: msg}
}

// InvalidFilter creates an invalid filter expression error.
func InvalidFilter(msg string, cause error) *ReviewError {
	return &ReviewError{Code: ErrCodeInvalidFilter, Message: msg, Cause: cause}
}

// CardNotFound creates a card not found error.
func CardNotFound(cardUID string) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeCardNotFound,
		Message: fmt.Sprintf("card not found: %s", cardUID),
	}
}

// SessionAlreadyActive creates a session already active error.
func SessionAlreadyActive(sessionID string) *ReviewError {
	return &ReviewError{
		Code:    ErrCodeSessionAlreadyActive,
		Message: fmt.Sprintf("a study session is already active: %s", sessionID),
	}
}

// SessionNotActive creates a session not active error.
func SessionNotActive(msg string) *ReviewError {
	return &ReviewError{Code: ErrCodeSessionNotActive, Message: msg}
}

// AnalyticsUnavailable creates an analytics unavailable error.
func AnalyticsUnavailable(msg string, cause error) *ReviewError {
	return &ReviewError{Code: ErrCodeAnalyticsUnavailable, Message: msg, Cause: cause}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *ReviewError {
	return &ReviewError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// StoreUnavailable creates a store unavailable error.
func StoreUnavailable(msg string, cause error) *ReviewError {
	return &ReviewError{Code: ErrCodeStoreUnavailable, Message: msg, Cause: cause}
}

// ContextCanceled creates a context canceled error.
func ContextCanceled(cause error) *ReviewError {
	return &ReviewError{Code: ErrCodeContextCanceled, Message: "operation canceled", Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string) *ReviewError {
	return &ReviewError{Code: ErrCodeTimeout, Message: msg}
}

// Wrap wraps an existing error with additional context.
func Wrap(cause error, code ErrorCode, msg string) *ReviewError {
	return &ReviewError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if revErr, ok := err.(*ReviewError); ok {
		return revErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ReviewError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if revErr, ok := err.(*ReviewError); ok {
		return revErr.Code
	}
	return defaultCode
}
