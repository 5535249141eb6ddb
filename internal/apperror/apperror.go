// Package apperror defines the error kinds the service layer returns and the
// handler layer maps to HTTP status codes.
package apperror

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
)

// AppError pairs an error kind with the message shown to the client.
type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind error, message string) *AppError {
	return &AppError{Err: kind, Message: message}
}

func Unauthenticated(message string) *AppError {
	return New(ErrUnauthenticated, message)
}

func Forbidden(message string) *AppError {
	return New(ErrForbidden, message)
}

// NotFound builds the "<Resource> not found" error, e.g. NotFound("Movie").
func NotFound(resource string) *AppError {
	return New(ErrNotFound, resource+" not found")
}

func InvalidInput(message string) *AppError {
	return New(ErrInvalidInput, message)
}

func Conflict(message string) *AppError {
	return New(ErrConflict, message)
}
