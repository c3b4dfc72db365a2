// Package errors provides structured error types for adforge.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server and the library
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by the stage that raises them:
//   - UNKNOWN_CHANNEL / UNSUPPORTED_CHANNEL: channel lookups during export and composition
//   - UNSUPPORTED_FILE_FORMAT: the renderer has no sink for a channel's format class
//   - INVALID_EXPORT_CONFIG: an export configuration was rejected before rendering
//   - JUDGMENT_UNAVAILABLE: the external judgment engine failed (recovered by scorers)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownChannel, "unknown channel: %s", id)
//	if errors.Is(err, errors.ErrCodeUnknownChannel) {
//	    // Handle lookup failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeJudgmentUnavailable, origErr, "compliance judgment")
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
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidExportConfig Code = "INVALID_EXPORT_CONFIG"
	ErrCodeInvalidName         Code = "INVALID_NAME"

	// Channel and format errors
	ErrCodeUnknownChannel        Code = "UNKNOWN_CHANNEL"
	ErrCodeUnsupportedChannel    Code = "UNSUPPORTED_CHANNEL"
	ErrCodeUnsupportedFileFormat Code = "UNSUPPORTED_FILE_FORMAT"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeArtifactNotFound Code = "ARTIFACT_NOT_FOUND"

	// Collaborator errors
	ErrCodeJudgmentUnavailable Code = "JUDGMENT_UNAVAILABLE"
	ErrCodeStorage             Code = "STORAGE_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
	ErrCodeCanceled Code = "CANCELED"
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

// HTTPStatus maps an error code to the HTTP status the server responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidExportConfig, ErrCodeInvalidName,
		ErrCodeUnknownChannel, ErrCodeUnsupportedChannel:
		return 400
	case ErrCodeNotFound, ErrCodeArtifactNotFound:
		return 404
	case ErrCodeUnsupportedFileFormat:
		return 422
	case ErrCodeJudgmentUnavailable, ErrCodeStorage:
		return 502
	case ErrCodeCanceled:
		return 499
	default:
		return 500
	}
}
