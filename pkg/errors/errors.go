// Package errors provides structured error types for arbor.
//
// Every error raised by the morphology core carries a machine-readable
// [Code] so that batch callers (the stats and check runners, the HTTP API)
// can separate per-file construction failures from programming errors
// without matching on message text.
//
// # Error Codes
//
// The morphology taxonomy maps onto three codes:
//   - MISSING_PARENT: a point references a parent id that does not exist
//   - INVALID_SOMA: no soma points, or a soma shape with no applicable rule
//   - NEUROM_ERROR: invalid feature name, scope or option combination
//
// The remaining codes follow the usual hierarchy:
//   - INVALID_*: input validation failures
//   - NOT_FOUND_*: resource not found
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.MissingParent(12, 99)
//	if errors.IsMissingParent(err) {
//	    // report the file and continue with the next one
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "line %d", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Morphology construction and feature errors
	ErrCodeMissingParent  Code = "MISSING_PARENT"
	ErrCodeInvalidSoma    Code = "INVALID_SOMA"
	ErrCodeNeuroM         Code = "NEUROM_ERROR"
	ErrCodeInvalidRawData Code = "INVALID_RAW_DATA"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidFeature Code = "INVALID_FEATURE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// =============================================================================
// Morphology taxonomy
// =============================================================================

// MissingParentError reports a point whose parent id resolves to no point.
type MissingParentError struct {
	ID       int // id of the orphaned point
	ParentID int // parent id that could not be resolved
}

// Error implements the error interface.
func (e *MissingParentError) Error() string {
	return fmt.Sprintf("point %d references missing parent %d", e.ID, e.ParentID)
}

// MissingParent returns a coded error wrapping a *MissingParentError.
func MissingParent(id, parentID int) *Error {
	cause := &MissingParentError{ID: id, ParentID: parentID}
	return Wrap(ErrCodeMissingParent, cause, "cannot build sections")
}

// SomaError returns a coded error for an unusable soma.
func SomaError(format string, args ...any) *Error {
	return New(ErrCodeInvalidSoma, format, args...)
}

// NeuroMError returns a coded error for invalid feature requests.
func NeuroMError(format string, args ...any) *Error {
	return New(ErrCodeNeuroM, format, args...)
}

// IsMissingParent reports whether err is a missing parent failure.
func IsMissingParent(err error) bool { return Is(err, ErrCodeMissingParent) }

// IsSoma reports whether err is a soma failure.
func IsSoma(err error) bool { return Is(err, ErrCodeInvalidSoma) }

// IsNeuroM reports whether err is a feature dispatch failure.
func IsNeuroM(err error) bool { return Is(err, ErrCodeNeuroM) }
