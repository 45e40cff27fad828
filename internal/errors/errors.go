package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred. Safe to retry the same call.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"

	// ErrCodeNotAuthenticated indicates there is no valid session; the caller
	// must redirect to login.
	ErrCodeNotAuthenticated ErrorCode = "not_authenticated"
	// ErrCodeInsufficientTokens indicates the user's token balance cannot
	// cover a module activation.
	ErrCodeInsufficientTokens ErrorCode = "insufficient_tokens"
	// ErrCodeNotEntitled indicates access-token issuance was refused because
	// the entitlement lapsed or was never granted.
	ErrCodeNotEntitled ErrorCode = "not_entitled"
	// ErrCodeStorageUnavailable indicates browser-side storage (cookies or
	// local storage) is inaccessible; callers degrade to same-origin sessions.
	ErrCodeStorageUnavailable ErrorCode = "storage_unavailable"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// NotAuthenticated creates a new NotAuthenticated error.
func NotAuthenticated(message string) *AppError {
	return &AppError{Code: ErrCodeNotAuthenticated, Message: message}
}

// InsufficientTokens creates a new InsufficientTokens error.
func InsufficientTokens(message string) *AppError {
	return &AppError{Code: ErrCodeInsufficientTokens, Message: message}
}

// InsufficientTokensf creates a new InsufficientTokens error with formatted message.
func InsufficientTokensf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInsufficientTokens, Message: fmt.Sprintf(format, args...)}
}

// NotEntitled creates a new NotEntitled error.
func NotEntitled(message string) *AppError {
	return &AppError{Code: ErrCodeNotEntitled, Message: message}
}

// NotEntitledf creates a new NotEntitled error with formatted message.
func NotEntitledf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotEntitled, Message: fmt.Sprintf(format, args...)}
}

// StorageUnavailable creates a new StorageUnavailable error.
func StorageUnavailable(message string) *AppError {
	return &AppError{Code: ErrCodeStorageUnavailable, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// IsNotAuthenticated checks if an error is a NotAuthenticated error.
func IsNotAuthenticated(err error) bool {
	return isCode(err, ErrCodeNotAuthenticated)
}

// IsInsufficientTokens checks if an error is an InsufficientTokens error.
func IsInsufficientTokens(err error) bool {
	return isCode(err, ErrCodeInsufficientTokens)
}

// IsNotEntitled checks if an error is a NotEntitled error.
func IsNotEntitled(err error) bool {
	return isCode(err, ErrCodeNotEntitled)
}

// IsStorageUnavailable checks if an error is a StorageUnavailable error.
func IsStorageUnavailable(err error) bool {
	return isCode(err, ErrCodeStorageUnavailable)
}

// IsTransient reports whether an error belongs to the retryable family
// (timeouts, cancellations, unclassified backend failures). Transient errors
// must never be interpreted as an entitlement or balance decision.
func IsTransient(err error) bool {
	return isCode(err, ErrCodeTimeout) || isCode(err, ErrCodeCanceled) || isCode(err, ErrCodeInternal)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
