// Package failure defines the error kinds returned by the stores. Route handlers map the kinds to
// status codes; anything not matching a kind is an internal error.
package failure

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Error carries a caller facing message and unwraps to one of the kind sentinels.
type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, Message: fmt.Sprintf(format, args...)}
}

// BadRequest signals duplicates, missing related entities and malformed input.
func BadRequest(format string, args ...any) error {
	return newError(ErrBadRequest, format, args...)
}

// Unauthorized signals failed authentication.
func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

// NotFound signals a missing read, update or delete target.
func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// Message returns the caller facing message of a kind error, or false for internal errors.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
