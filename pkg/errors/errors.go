// Package errors provides coded application errors for the CLI and the HTTP
// server.
//
// Library packages return plain sentinel errors. At the application edge
// they are wrapped into an [Error] carrying a machine-readable [Code], which
// the server maps to a status code and the CLI prints without the code
// prefix.
//
// # Error Codes
//
//   - INVALID_*: input validation failures
//   - *NOT_FOUND: unknown trees or seeds
//   - CORRUPT_STORE: a stored tree failed validation
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLimit, "limit %q is not a number", s)
//	if errors.Is(err, errors.ErrCodeInvalidLimit) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidWorkload, cause, "read %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidWorkload Code = "INVALID_WORKLOAD"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidLimit    Code = "INVALID_LIMIT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeTreeNotFound Code = "TREE_NOT_FOUND"
	ErrCodeSeedNotFound Code = "SEED_NOT_FOUND"

	// Data errors
	ErrCodeCorruptStore Code = "CORRUPT_STORE"

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
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
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

// UserMessage returns the message of an *Error without the code prefix,
// followed by its cause. Other errors are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// HTTPStatus maps a code to the HTTP status the server responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidWorkload, ErrCodeInvalidFormat,
		ErrCodeInvalidPath, ErrCodeInvalidLimit:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeTreeNotFound, ErrCodeSeedNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case ErrCodeCorruptStore, ErrCodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
