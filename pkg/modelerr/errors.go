// Package modelerr provides structured error types for model construction.
//
// Every failure reported by the region algebra and the model graph is a
// programming-contract violation detected when a box, frame or node is built
// or reassigned. Rendering and array transfer never fail: a source that does
// not overlap a frame simply contributes zeros.
//
// # Error Codes
//
//   - INVALID_DIMENSION: a shape or origin cannot be normalised to three axes
//   - INVALID_OPERATION: a combined node was given an unsupported fold
//   - TYPE_MISMATCH: a collaborator of the wrong kind was supplied
//   - ALIGNMENT_MISMATCH: combined children do not share frame or box
//
// # Usage
//
//	err := modelerr.New(modelerr.CodeInvalidDimension, "shape %v has %d axes", shape, len(shape))
//	if errors.Is(err, modelerr.ErrInvalidDimension) {
//	    // handle
//	}
package modelerr

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the construction failures of the model graph.
const (
	CodeInvalidDimension  Code = "INVALID_DIMENSION"
	CodeInvalidOperation  Code = "INVALID_OPERATION"
	CodeTypeMismatch      Code = "TYPE_MISMATCH"
	CodeAlignmentMismatch Code = "ALIGNMENT_MISMATCH"
)

// Sentinels for errors.Is. An *Error matches the sentinel with the same code.
var (
	ErrInvalidDimension  = &Error{Code: CodeInvalidDimension, Message: "invalid dimension"}
	ErrInvalidOperation  = &Error{Code: CodeInvalidOperation, Message: "invalid operation"}
	ErrTypeMismatch      = &Error{Code: CodeTypeMismatch, Message: "type mismatch"}
	ErrAlignmentMismatch = &Error{Code: CodeAlignmentMismatch, Message: "alignment mismatch"}
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

// Is matches any *Error carrying the same code, so callers can compare
// against the package sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
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
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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
