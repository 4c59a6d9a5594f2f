// Package errors provides structured error types for pydepgraph.
//
// Every failure surfaced by the registry client or the graph assembler carries
// a machine-readable [Code]. The CLI prints [UserMessage] and the HTTP API maps
// codes to status codes, so callers never need to match on message text.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (depth, package name)
//   - REGISTRY_UNAVAILABLE: the registry read could not complete
//   - MALFORMED_RESPONSE: the registry answered with an unexpected body
//   - INSUFFICIENT_DEPENDENCIES: more dependencies requested than declared
//   - UNPARSEABLE_DECLARATION: a dependency declaration has an unknown shape
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInsufficientDeps, "%s declares %d dependencies", name, n)
//	if errors.Is(err, errors.ErrCodeInsufficientDeps) {
//	    // ask for fewer
//	}
//
//	err := errors.Wrap(errors.ErrCodeRegistryUnavailable, origErr, "fetch %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Registry errors
	ErrCodeRegistryUnavailable Code = "REGISTRY_UNAVAILABLE"
	ErrCodeMalformedResponse   Code = "MALFORMED_RESPONSE"

	// Graph assembly errors
	ErrCodeInsufficientDeps       Code = "INSUFFICIENT_DEPENDENCIES"
	ErrCodeUnparseableDeclaration Code = "UNPARSEABLE_DECLARATION"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// Only the outermost *Error in the chain is consulted, so a wrapping error
// decides the code even when its cause carries a different one.
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

// IsInput reports whether err was caused by bad caller input rather than
// by the registry. The HTTP API answers these with 400.
func IsInput(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidPackage, ErrCodeInvalidFormat,
		ErrCodeInsufficientDeps, ErrCodeUnparseableDeclaration:
		return true
	}
	return false
}
