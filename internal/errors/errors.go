// Package errors defines the application error type shared by the data and
// HTTP layers. Store failures are normalized into stable codes (see
// MapDBError) so handlers can pick a status and the error-class metrics can
// label by code without inspecting driver errors.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeConflict   ErrorCode = "conflict"
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeInternal   ErrorCode = "internal"
	ErrCodeTimeout    ErrorCode = "timeout"
	ErrCodeCanceled   ErrorCode = "canceled"
)

// AppError carries a failure class alongside a message safe to return to
// callers. Cause keeps the original error reachable through errors.Is and
// errors.As chains.
type AppError struct {
	Code    ErrorCode
	Message string
	// Field names the offending column or input field when one is known,
	// e.g. for constraint violations.
	Field string
	Cause error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound builds a not_found error with the given message.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf is NotFound with a formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return NotFound(fmt.Sprintf(format, args...))
}

// Conflict builds a conflict error, typically for unique key collisions.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation builds a validation error with no particular field.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField builds a validation error attributed to one field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Internal builds an internal error for failures the caller cannot act on.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap attaches a code and message to err, keeping err as the cause.
// Returns nil when err is nil so call sites can wrap unconditionally.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode extracts the ErrorCode from anywhere in err's chain. Errors that
// never passed through this package yield the empty code.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField extracts the Field from anywhere in err's chain.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// IsNotFound reports whether err carries ErrCodeNotFound.
func IsNotFound(err error) bool { return GetCode(err) == ErrCodeNotFound }

// IsConflict reports whether err carries ErrCodeConflict.
func IsConflict(err error) bool { return GetCode(err) == ErrCodeConflict }

// IsValidation reports whether err carries ErrCodeValidation.
func IsValidation(err error) bool { return GetCode(err) == ErrCodeValidation }

// IsInternal reports whether err carries ErrCodeInternal.
func IsInternal(err error) bool { return GetCode(err) == ErrCodeInternal }
