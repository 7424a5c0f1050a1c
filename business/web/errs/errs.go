// Package errs maps handler errors onto the status code and body the client
// receives.
package errs

import (
	"errors"
	"net/http"
)

// Response is the body sent to the client when a request fails.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Error marks a handler error as safe to show to the client and carries the
// status to respond with.
type Error struct {
	Err    error
	Status int
}

// New marks err as client facing with the status code.
func New(err error, status int) error {
	return &Error{Err: err, Status: status}
}

// Error implements the error interface and is what the service logs.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Response builds the body for the client.
func (e *Error) Response() Response {
	return Response{Error: e.Err.Error()}
}

// As returns the first Error in the chain of err.
func As(err error) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// Internal is the response for any error that wasn't marked for the
// client. The details stay in the logs.
func Internal() (Response, int) {
	return Response{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError
}
