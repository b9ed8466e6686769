// Package errors provides structured error types for the commit-graph engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into the categories the engine distinguishes:
//   - Construction errors (DUPLICATE_COMMIT, MALFORMED_PARENT): fatal to building
//     a permanent graph, nothing is published
//   - Query errors (OUT_OF_RANGE, UNKNOWN_COMMIT): reported to the caller, never clamped
//   - CANCELED: a long pass was aborted; previously published state stays valid
//   - INVALID_*: configuration and input validation failures
//
// Interactive actions that reference elements a layer cannot represent are not
// errors at all; controllers answer them with an empty answer.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateCommit, "commit %v listed twice", id)
//	if errors.Is(err, errors.ErrCodeDuplicateCommit) {
//	    // Handle construction failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "bek sort aborted")
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Construction errors
	ErrCodeDuplicateCommit Code = "DUPLICATE_COMMIT"
	ErrCodeMalformedParent Code = "MALFORMED_PARENT"

	// Query errors
	ErrCodeOutOfRange    Code = "OUT_OF_RANGE"
	ErrCodeUnknownCommit Code = "UNKNOWN_COMMIT"
	ErrCodeNotFound      Code = "NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Aborted work
	ErrCodeCanceled Code = "CANCELED"

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

// Canceled wraps a context error as a CANCELED error. It returns nil when
// ctx has not been canceled, so it can guard loop iterations directly:
//
//	if err := errors.Canceled(ctx, "layout"); err != nil {
//	    return nil, err
//	}
func Canceled(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(ErrCodeCanceled, err, "%s canceled", op)
	}
	return nil
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

// IsConstruction reports whether err aborted building a permanent graph.
func IsConstruction(err error) bool {
	switch GetCode(err) {
	case ErrCodeDuplicateCommit, ErrCodeMalformedParent:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// Construction failures collapse to a single refresh hint; other *Error
// values return their message without the code prefix; anything else
// returns the error string as-is.
func UserMessage(err error) string {
	if IsConstruction(err) {
		return "log unavailable, refresh"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
