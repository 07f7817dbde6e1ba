// Package errors provides standardized error handling for hardenaudit.
// It defines sentinel errors and utilities for error wrapping with context.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// ErrCommandNotFound indicates a required external tool is not installed
	ErrCommandNotFound = stderrors.New("command not found")

	// ErrCommandFailed indicates an external tool ran but exited non-zero
	ErrCommandFailed = stderrors.New("command failed")

	// ErrTimeoutExceeded indicates a command or check exceeded its timeout
	ErrTimeoutExceeded = stderrors.New("timeout exceeded")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = stderrors.New("permission denied")

	// ErrInvalidConfig indicates configuration is invalid or incomplete
	ErrInvalidConfig = stderrors.New("invalid configuration")

	// ErrInvalidInput indicates a caller passed an unusable value
	ErrInvalidInput = stderrors.New("invalid input")

	// ErrFileOperation indicates a file operation failed
	ErrFileOperation = stderrors.New("file operation failed")

	// ErrReportUnavailable indicates the report file could not be created
	ErrReportUnavailable = stderrors.New("report unavailable")

	// ErrCheckPanicked indicates a check routine panicked and was recovered
	ErrCheckPanicked = stderrors.New("check panicked")
)

// Wrap wraps an error with context message and preserves the underlying error chain.
// Use this to add context while maintaining error identity for stderrors.Is checks.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}

// New creates a new error with formatted message.
func New(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
