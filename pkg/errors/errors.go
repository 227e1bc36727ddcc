package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors that the HTTP layer maps to status codes. Services wrap
// these with context instead of returning transport-aware errors.

var (
	// ErrNotFound indicates a requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied indicates the diner does not own the resource
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput indicates a request failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates a missing or invalid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates the request clashes with existing state
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an unexpected server-side failure
	ErrInternal = errors.New("internal error")
)

// NotFoundError wraps ErrNotFound with the resource name, producing messages
// like "rating flow session not found"
func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// AccessDeniedError wraps ErrAccessDenied with an optional reason
func AccessDeniedError(reason string) error {
	if reason != "" {
		return fmt.Errorf("%s: %w", reason, ErrAccessDenied)
	}
	return ErrAccessDenied
}

// InvalidInputError wraps ErrInvalidInput with the offending field and reason
func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

// UnauthorizedError wraps ErrUnauthorized with a reason
func UnauthorizedError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrUnauthorized)
}

// ConflictError wraps ErrConflict with a reason
func ConflictError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrConflict)
}

// InternalError wraps ErrInternal with a message safe to return to clients
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is reports whether err matches target, unwrapping as needed
func Is(err, target error) bool {
	return errors.Is(err, target)
}
