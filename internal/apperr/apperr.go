// Package apperr defines the error taxonomy shared by services and transports.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error independently of the transport that reports it.
type Kind int

const (
	// Internal covers storage and hashing failures. It is the zero value so
	// that unclassified errors are never reported as client mistakes.
	Internal Kind = iota
	// Validation means malformed or missing input.
	Validation
	// Conflict means a unique field is already taken.
	Conflict
	// NotFound means the entity is absent or not owned by the caller.
	NotFound
	// Auth means the supplied password did not match.
	Auth
	// MissingCredential means no bearer token was presented.
	MissingCredential
	// InvalidCredential means the token is malformed, mis-signed or expired.
	InvalidCredential
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case Auth:
		return "auth"
	case MissingCredential:
		return "missing_credential"
	case InvalidCredential:
		return "invalid_credential"
	default:
		return "internal"
	}
}

// Error is a classified error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err. Message is what the client will see.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or Internal if err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Message
	}
	return "internal server error"
}
