package domain

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable category of a store failure.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized" // No or invalid session
	KindConflict     Kind = "conflict"     // Uniqueness violation
	KindNotFound     Kind = "not_found"    // Absent or not owned by the session
	KindInvalid      Kind = "invalid"      // Malformed input
	KindInternal     Kind = "internal"     // Backend failure
)

// Error is a typed store failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "Authentication required"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "Conflict"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "Not found"}
	ErrInvalid      = &Error{Kind: KindInvalid, Message: "Invalid request"}
	ErrInternal     = &Error{Kind: KindInternal, Message: "Internal error"}
)

// Unauthorized creates a new unauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Conflict creates a new conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NotFound creates a new not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Invalid creates a new validation error.
func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

// Internal wraps a backend failure.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the kind of err, KindInternal for foreign errors and "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
