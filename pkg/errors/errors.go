// Package errors provides structured error types for pairtree.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending value
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Tree reconstruction codes describe caller-input problems. They are never
// transient: a build or import that fails with one of them fails again on the
// same input.
//
//   - PARENT_NOT_FOUND: closure build met a pair whose parent is not in the tree yet
//   - ROOT_NOT_FOUND: no root can be established
//   - AMBIGUOUS_ROOT: more than one root record in an import set
//   - ORPHAN_ELEMENT: an import record never resolves to a placed parent
//   - DISCONNECTED: direct-edge pairs do not form one connected tree
//   - CYCLE: an insertion would make a node its own ancestor
//   - MULTIPLE_PARENTS: a direct-edge pair gives a child a second parent
//   - DUPLICATE_ID: two import records map to the same id
//
// The remaining codes follow the INVALID_* / NOT_FOUND_* / INTERNAL_* scheme
// for I/O and transport concerns.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParentNotFound, "parent %q does not exist in tree", p)
//	if errors.Is(err, errors.ErrCodeParentNotFound) {
//	    // Handle bad input
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
	// Tree reconstruction errors
	ErrCodeParentNotFound  Code = "PARENT_NOT_FOUND"
	ErrCodeRootNotFound    Code = "ROOT_NOT_FOUND"
	ErrCodeAmbiguousRoot   Code = "AMBIGUOUS_ROOT"
	ErrCodeOrphanElement   Code = "ORPHAN_ELEMENT"
	ErrCodeDisconnected    Code = "DISCONNECTED"
	ErrCodeCycle           Code = "CYCLE"
	ErrCodeMultipleParents Code = "MULTIPLE_PARENTS"
	ErrCodeDuplicateID     Code = "DUPLICATE_ID"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// structural lists the codes produced by tree reconstruction itself.
var structural = map[Code]bool{
	ErrCodeParentNotFound:  true,
	ErrCodeRootNotFound:    true,
	ErrCodeAmbiguousRoot:   true,
	ErrCodeOrphanElement:   true,
	ErrCodeDisconnected:    true,
	ErrCodeCycle:           true,
	ErrCodeMultipleParents: true,
	ErrCodeDuplicateID:     true,
}

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

// IsStructural reports whether err carries one of the tree reconstruction
// codes, i.e. the input was well-formed but does not describe a valid tree.
func IsStructural(err error) bool {
	return structural[GetCode(err)]
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
