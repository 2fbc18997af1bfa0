package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error codes.
// ConfigNotFound, ConfigParse and UnknownMethod are fatal: the run aborts and
// no partial output is produced. Timeout aborts a permutation loop that hit
// its deadline. EmptyInput is informational only; stages treat an empty table
// as a degenerate no-op, not an error.
const (
	CodeConfigNotFound = "CONFIG_NOT_FOUND"
	CodeConfigParse    = "CONFIG_PARSE"
	CodeUnknownMethod  = "UNKNOWN_METHOD"
	CodeEmptyInput     = "EMPTY_INPUT"
	CodeTimeout        = "TIMEOUT"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeDatabaseError  = "DATABASE_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Common error constructors

func ConfigNotFound(path string) *AppError {
	return New(CodeConfigNotFound, fmt.Sprintf("configuration file not found at %s", path))
}

func ConfigParse(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeConfigParse,
		Message: message,
		Cause:   cause,
	}
}

func UnknownMethod(name string) *AppError {
	return New(CodeUnknownMethod, fmt.Sprintf("unknown analysis method %q", name))
}

func Timeout(operation string) *AppError {
	return New(CodeTimeout, fmt.Sprintf("%s exceeded its deadline", operation))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeDatabaseError,
		Message: message,
		Cause:   cause,
	}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
