package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Rule and transformer errors
	ErrUnknownTransformer   ErrorCode = "UNKNOWN_TRANSFORMER"
	ErrTransformerConstruct ErrorCode = "TRANSFORMER_CONSTRUCT"
	ErrTransformerExecute   ErrorCode = "TRANSFORMER_EXECUTE"
	ErrCyclicDependency     ErrorCode = "CYCLIC_DEPENDENCY"

	// Build errors
	ErrBuildFailed ErrorCode = "BUILD_FAILED"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// MarechError represents a structured error with code and details
type MarechError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MarechError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MarechError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MarechError) Is(target error) bool {
	var targetErr *MarechError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MarechError with the given code and message
func New(code ErrorCode, message string) *MarechError {
	return &MarechError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MarechError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MarechError {
	return &MarechError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MarechError
func Wrap(err error, code ErrorCode, message string) *MarechError {
	if err == nil {
		return nil
	}
	return &MarechError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MarechError {
	if err == nil {
		return nil
	}
	return &MarechError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MarechError) WithDetail(key string, value interface{}) *MarechError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MarechError) WithDetails(details map[string]interface{}) *MarechError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode reports whether any MarechError in the error tree carries
// code. Nested transformations wrap errors once per level and builds join the
// failures of several files, so the code searched for is often not the
// outermost one.
func IsErrorCode(err error, code ErrorCode) bool {
	_, ok := FindError(err, code)
	return ok
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MarechError
func GetErrorCode(err error) ErrorCode {
	var marechErr *MarechError
	if errors.As(err, &marechErr) {
		return marechErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MarechError
func GetErrorDetails(err error) map[string]interface{} {
	var marechErr *MarechError
	if errors.As(err, &marechErr) {
		return marechErr.Details
	}
	return nil
}

// FindError returns the first MarechError carrying code, searching the error
// tree depth first in the same order as errors.As, joined errors included.
func FindError(err error, code ErrorCode) (*MarechError, bool) {
	switch e := err.(type) {
	case nil:
		return nil, false
	case *MarechError:
		if e.Code == code {
			return e, true
		}
		return FindError(e.Wrapped, code)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if found, ok := FindError(inner, code); ok {
				return found, true
			}
		}
		return nil, false
	case interface{ Unwrap() error }:
		return FindError(e.Unwrap(), code)
	}
	return nil, false
}
