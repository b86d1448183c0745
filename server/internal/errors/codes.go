package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type for intake operations.
type ErrorCode string

const (
	// ErrCodeSessionNotFound indicates the requested intake session does not exist.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	// ErrCodeSessionLocked indicates another turn is already in flight for the session.
	ErrCodeSessionLocked ErrorCode = "SESSION_LOCKED"
	// ErrCodeInvalidProvider indicates an unrecognized language-model provider.
	ErrCodeInvalidProvider ErrorCode = "INVALID_PROVIDER"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeProviderUnavailable indicates the provider could not be reached.
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	// ErrCodeProviderTimeout indicates the provider call exceeded its deadline.
	ErrCodeProviderTimeout ErrorCode = "PROVIDER_TIMEOUT"
	// ErrCodeProviderRateLimited indicates the provider rejected the call for rate limiting.
	ErrCodeProviderRateLimited ErrorCode = "PROVIDER_RATE_LIMITED"
	// ErrCodeProviderAuth indicates the provider rejected the configured credentials.
	ErrCodeProviderAuth ErrorCode = "PROVIDER_AUTH"
	// ErrCodeExtractionFailed indicates the turn failed after retries and fallback.
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// ErrCodeRateLimitExceeded indicates the caller exceeded the request rate limit.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// IntakeError represents a structured error for intake operations.
type IntakeError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *IntakeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *IntakeError) Unwrap() error {
	return e.Cause
}

// Convenience constructors for common error types.

// SessionNotFound creates a session not found error.
func SessionNotFound(id string) *IntakeError {
	return &IntakeError{Code: ErrCodeSessionNotFound, Message: fmt.Sprintf("session not found: %s", id)}
}

// SessionLocked creates a session locked error.
func SessionLocked(id string) *IntakeError {
	return &IntakeError{Code: ErrCodeSessionLocked, Message: fmt.Sprintf("another turn is in flight for session %s", id)}
}

// InvalidProvider creates an invalid provider error.
func InvalidProvider(name string) *IntakeError {
	return &IntakeError{Code: ErrCodeInvalidProvider, Message: fmt.Sprintf("unknown provider: %s", name)}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *IntakeError {
	return &IntakeError{Code: ErrCodeInvalidArgument, Message: msg}
}

// ProviderUnavailable creates a provider unavailable error.
func ProviderUnavailable(msg string, cause error) *IntakeError {
	return &IntakeError{Code: ErrCodeProviderUnavailable, Message: msg, Cause: cause}
}

// ProviderTimeout creates a provider timeout error.
func ProviderTimeout(msg string, cause error) *IntakeError {
	return &IntakeError{Code: ErrCodeProviderTimeout, Message: msg, Cause: cause}
}

// ProviderRateLimited creates a provider rate limited error.
func ProviderRateLimited(msg string, cause error) *IntakeError {
	return &IntakeError{Code: ErrCodeProviderRateLimited, Message: msg, Cause: cause}
}

// ProviderAuth creates a provider authentication error.
func ProviderAuth(msg string, cause error) *IntakeError {
	return &IntakeError{Code: ErrCodeProviderAuth, Message: msg, Cause: cause}
}

// ExtractionFailed creates an extraction failed error.
func ExtractionFailed(msg string, cause error) *IntakeError {
	return &IntakeError{Code: ErrCodeExtractionFailed, Message: msg, Cause: cause}
}

// Internal creates an internal error.
func Internal(msg string, cause error) *IntakeError {
	return &IntakeError{Code: ErrCodeInternal, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with a code.
func Wrap(cause error, code ErrorCode, msg string) *IntakeError {
	return &IntakeError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not an IntakeError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return defaultCode
}
