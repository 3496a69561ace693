// Package httperr defines the API error taxonomy shared by services and
// handlers: every failure a caller can see is an Error carrying the HTTP
// status it maps to and a message safe to return verbatim.
package httperr

import (
	"errors"
	"net/http"
)

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// BadRequest reports malformed or incomplete caller input.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthorized reports a credential or token failure.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// NotFound reports an absent referenced account.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict reports a duplicate unique field.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// Internal reports an unexpected collaborator failure. The original cause is
// never exposed to the caller.
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From returns err as an *Error, wrapping anything unrecognised into a
// generic 500 so internal detail never leaks into a response body.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("internal server error")
}

// IsInternal reports whether err should be treated as an unexpected failure
// (and, for example, forwarded to error tracking).
func IsInternal(err error) bool {
	return From(err).Status >= http.StatusInternalServerError
}
