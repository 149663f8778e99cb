// Package apperror defines the errors the API reports to clients. Each one
// carries the HTTP status, a stable machine-readable code and the message
// shown to the caller; anything else is an internal failure.
package apperror

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Code    string // snake_case, stable across releases; clients switch on it
	Message string
	Err     error // cause, logged but never sent
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so a wrapped copy of a sentinel
// still satisfies errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New declares a sentinel.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap returns a copy of e that records cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// StatusOf returns the HTTP status for err, or 500 when err is not an *Error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
