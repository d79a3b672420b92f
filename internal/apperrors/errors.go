package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Validation Kind = iota + 1
	Authentication
	Authorization
	NotFound
	Conflict
	Database
)

// Error is the only error type the handler layer interprets. The store
// and guard layers translate everything into it at their boundary; the
// wrapped Err is for logs only and never reaches a client.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidation(message string, details map[string]string) *Error {
	return &Error{Kind: Validation, Message: message, Details: details}
}

func NewAuthentication(message string) *Error {
	return &Error{Kind: Authentication, Message: message}
}

func NewAuthorization(message string) *Error {
	return &Error{Kind: Authorization, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: Conflict, Message: message}
}

func NewDatabase(err error) *Error {
	return &Error{Kind: Database, Message: "Internal server error", Err: err}
}

// As unwraps err into an *Error, or wraps an untyped error as Database
// so no raw store diagnostics ever leak outward.
func As(err error) *Error {
	var appErr *Error

	if errors.As(err, &appErr) {
		return appErr
	}

	return NewDatabase(err)
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error

	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}

	return false
}
