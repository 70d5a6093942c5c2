// Package apperr defines the error taxonomy shared by services and HTTP handlers.
package apperr

import "errors"

// Code classifies a service failure.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
)

// Error is a classified service error. Anything that is not an *Error is unclassified.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(msg string) error     { return &Error{Code: CodeNotFound, Message: msg} }
func BadRequest(msg string) error   { return &Error{Code: CodeBadRequest, Message: msg} }
func Conflict(msg string) error     { return &Error{Code: CodeConflict, Message: msg} }
func Unauthorized(msg string) error { return &Error{Code: CodeUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &Error{Code: CodeForbidden, Message: msg} }

// As returns the classified error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is classified with code.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
