// Package apperr defines the error taxonomy shared by the repositories and
// the HTTP layer. Repositories return these kinds; handlers classify them
// into status codes.
package apperr

import (
	"errors"
	"strings"
)

// Error kinds.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConstraint   = errors.New("constraint violation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrPersistence  = errors.New("persistence failure")
)

// ErrNoFields is returned by partial updates that carry no fields.
var ErrNoFields = &Error{Kind: ErrValidation, Message: "no fields to update"}

// Error is a classified failure carrying a message that is safe to show to
// API clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation reports malformed or missing input.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// MissingFields reports required fields that were not provided.
func MissingFields(fields ...string) error {
	return Validation("missing required fields: " + strings.Join(fields, ", "))
}

// NotFound reports an unknown identifier.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Constraint reports a foreign-key, uniqueness or check failure.
func Constraint(msg string, err error) error {
	return &Error{Kind: ErrConstraint, Message: msg, Err: err}
}

// Unauthorized reports a missing, invalid or expired credential.
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Message: msg}
}

// Forbidden reports an authenticated caller acting outside its rights.
func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// Persistence wraps an unexpected data-layer failure.
func Persistence(msg string, err error) error {
	return &Error{Kind: ErrPersistence, Message: msg, Err: err}
}

// Message returns the client-safe message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
