package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeConnection  ErrorType = "CONNECTION"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeCompute     ErrorType = "COMPUTE"
	ErrTypeEmptyResult ErrorType = "EMPTY_RESULT"
	ErrTypeConflict    ErrorType = "CONFLICT"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError of the same type, so sentinel comparisons like
// errors.Is(err, &AppError{Type: ErrTypeEmptyResult}) work.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Fatal reports whether the error aborts a generation.
func (e *AppError) Fatal() bool {
	switch e.Type {
	case ErrTypeCompute, ErrTypeEmptyResult:
		return false
	}
	return true
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewConnectionError creates an error for an unreachable data source
func NewConnectionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConnection, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewMissingColumnError creates a validation error for a required column
// absent from a source.
func NewMissingColumnError(source, column string) *AppError {
	return NewAppError(ErrTypeValidation, fmt.Sprintf("%s is missing required column %q", source, column), nil).
		WithContext("source", source).
		WithContext("column", column)
}

// NewComputeError creates an error for a value that could not be coerced.
// Compute errors are recovered where they occur.
func NewComputeError(column string, value interface{}, cause error) *AppError {
	return NewAppError(ErrTypeCompute, fmt.Sprintf("could not coerce %v in column %q", value, column), cause).
		WithContext("column", column)
}

// NewEmptyResultError signals that filtering left nothing to report.
func NewEmptyResultError(message string) *AppError {
	return NewAppError(ErrTypeEmptyResult, message, nil)
}

// NewConflictError signals that a generation is already running.
func NewConflictError(message string) *AppError {
	return NewAppError(ErrTypeConflict, message, nil)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}
