// Package errors provides structured error types for critpath.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the editor and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The scheduling engine reports four kinds of failure:
//   - INVALID_ACTIVITY: malformed label or duration passed to AddActivity
//   - ACTIVITY_NOT_FOUND: a mutation referenced an unknown activity id
//   - PROTECTED_ACTIVITY: an attempt to delete Start or Finish
//   - INCOMPLETE_GRAPH: a calculation on a network with dangling activities
//
// INVALID_EDGE and GRAPH_CYCLE reject edges that would break the network's
// structural invariants. The remaining codes cover file, session and
// transport concerns.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidActivity, "activity label must not be empty")
//	if errors.Is(err, errors.ErrCodeInvalidActivity) {
//	    // Prompt the user to correct the input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Scheduling engine errors
	ErrCodeInvalidActivity   Code = "INVALID_ACTIVITY"
	ErrCodeActivityNotFound  Code = "ACTIVITY_NOT_FOUND"
	ErrCodeProtectedActivity Code = "PROTECTED_ACTIVITY"
	ErrCodeIncompleteGraph   Code = "INCOMPLETE_GRAPH"
	ErrCodeInvalidEdge       Code = "INVALID_EDGE"
	ErrCodeCycle             Code = "GRAPH_CYCLE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

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

// coder is implemented by typed errors that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error
// with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
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

// IncompleteGraphError is returned when a calculation is attempted on a
// network where some activity has no predecessor or no successor.
type IncompleteGraphError struct {
	ActivityID int
	Label      string
	Missing    string // "predecessor" or "successor"
}

// Error implements the error interface.
func (e *IncompleteGraphError) Error() string {
	return fmt.Sprintf("activity %q (id %d) has no %s: every activity needs a path from Start to Finish",
		e.Label, e.ActivityID, e.Missing)
}

// Code returns the error code for this error type.
func (e *IncompleteGraphError) Code() Code {
	return ErrCodeIncompleteGraph
}
