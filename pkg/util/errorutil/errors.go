package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error standardizes application errors. A zero Status means the status was
// not specified and is resolved at the HTTP boundary.
type Error struct {
	Message string
	Status  int
	// Cause is surfaced to the caller in the error response.
	Cause any
	// Err is kept for diagnostics only.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status, defaulting to 500 when unspecified.
func (e *Error) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// Option customizes an Error at construction.
type Option func(*Error)

// WithStatus sets the HTTP status code.
func WithStatus(status int) Option {
	return func(e *Error) { e.Status = status }
}

// WithCause attaches a caller-visible cause.
func WithCause(cause any) Option {
	return func(e *Error) { e.Cause = cause }
}

// WithErr wraps an underlying error.
func WithErr(err error) Option {
	return func(e *Error) { e.Err = err }
}

// New constructs an Error from a message and optional settings.
func New(message string, opts ...Option) *Error {
	e := &Error{Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func NewValidationError(message string) error {
	return New(message, WithStatus(http.StatusBadRequest))
}

func NewNotFound(message string) error {
	return New(message, WithStatus(http.StatusNotFound))
}

func NewUnauthorized(message string) error {
	return New(message, WithStatus(http.StatusUnauthorized))
}

func NewInternalError(err error) error {
	return New("", WithStatus(http.StatusInternalServerError), WithErr(err))
}

// As extracts the Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf reports the HTTP status an error resolves to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if appErr, ok := As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}
