// Package errors provides domain-specific error types and sentinel errors
// shared by the converter, the CLI and the HTTP server.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() or the Is* helpers to check them.
var (
	// ErrInputMissing indicates the timetable source file does not exist.
	ErrInputMissing = errors.New("timetable input missing")

	// ErrInvalidDate indicates the semester start is not a YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid semester start date")

	// ErrInvalidInput indicates a request or file could not be used as timetable text.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested conversion was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrPublishDisabled indicates publishing was requested without object storage configured.
	ErrPublishDisabled = errors.New("publishing not configured")
)

// IsInputMissing reports whether err wraps ErrInputMissing.
func IsInputMissing(err error) bool {
	return errors.Is(err, ErrInputMissing)
}

// IsInvalidDate reports whether err wraps ErrInvalidDate.
func IsInvalidDate(err error) bool {
	return errors.Is(err, ErrInvalidDate)
}

// IsInvalidInput reports whether err wraps ErrInvalidInput or is a *ValidationError.
func IsInvalidInput(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrInvalidInput) || errors.As(err, &ve)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
