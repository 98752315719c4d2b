package service

import (
	"errors"
	"fmt"

	"contenthub/internal/repository"
)

// Kind classifies a service error. Handlers map it to an HTTP status.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
	KindUnauthorized
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindStorage:
		return "storage error"
	}
	return "unknown"
}

// FieldError is one validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned by every service operation that fails for a reason the
// caller can act on.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrStorage      = &Error{Kind: KindStorage}
)

func invalidInput(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Fields: fields}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func storageError(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// lookupError turns a repository lookup failure into NotFound or StorageError.
func lookupError(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(what + " not found")
	}
	return storageError("failed to load "+what, err)
}

// KindOf returns the kind of err, or KindStorage when err is not a service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
