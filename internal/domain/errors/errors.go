// Package errors provides domain-specific errors for the beancounter application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrFileNotFound        = errors.New("file not found")
	ErrInvalidUTF8         = errors.New("file is not valid UTF-8")
	ErrUnknownTokenizer    = errors.New("unknown tokenizer")
	ErrProviderUnavailable = errors.New("tokenizer provider unavailable")
	ErrSelectionAborted    = errors.New("tokenizer selection aborted")
	ErrNoInputFiles        = errors.New("at least one file path required")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeProvider      ErrorCode = "PROVIDER"
	CodeIO            ErrorCode = "IO"
	CodeConfiguration ErrorCode = "CONFIG"
)

// BeancounterError wraps errors with additional context for debugging and handling.
type BeancounterError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *BeancounterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *BeancounterError) Unwrap() error {
	return e.Cause
}

// NewError creates a new BeancounterError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *BeancounterError {
	return &BeancounterError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
func WithContext(err *BeancounterError, key string, value interface{}) *BeancounterError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// CodeOf returns the ErrorCode of the first BeancounterError in err's chain,
// or an empty code when there is none.
func CodeOf(err error) ErrorCode {
	var be *BeancounterError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Is reports whether err matches target using errors.Is semantics.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
