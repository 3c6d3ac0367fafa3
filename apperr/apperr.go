// Package apperr defines the structured error surfaced at the request
// boundary. Every failure class the API can report is an *Error carrying
// an HTTP status; anything else is treated as an internal error and never
// serialized to the caller.
package apperr

import "fmt"

type Error struct {
	Status  int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Config reports missing or unusable process configuration (client id,
// secret, redirect URI). Never retried.
func Config(format string, args ...any) *Error {
	return &Error{Status: 400, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a malformed or empty required input.
func Validation(format string, args ...any) *Error {
	return &Error{Status: 400, Message: fmt.Sprintf(format, args...)}
}

// AuthRequired reports a request with no usable session token.
func AuthRequired(format string, args ...any) *Error {
	return &Error{Status: 401, Message: fmt.Sprintf(format, args...)}
}

// State reports an operation that the task lifecycle forbids (joining
// without the specialty, updating without having joined, delivering
// without standing).
func State(format string, args ...any) *Error {
	return &Error{Status: 400, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports a transport or protocol failure from the platform.
// Details carries the upstream status and body for diagnostics.
func Upstream(details any, format string, args ...any) *Error {
	return &Error{Status: 502, Message: fmt.Sprintf(format, args...), Details: details}
}
