// Package errs holds the error taxonomy shared by the store, the service
// layer and the HTTP handlers.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means no principal, or the credentials were rejected.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the principal is known but does not own the target.
	ErrForbidden = errors.New("permission denied")
	// ErrNotFound means the id does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a malformed payload. Field names the offending
// attribute by its JSON name and is empty for payload-level problems.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid is shorthand for a field-level validation error.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness collision on registration.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Conflict builds a ConflictError for field.
func Conflict(field, message string) error {
	return &ConflictError{Field: field, Message: message}
}
