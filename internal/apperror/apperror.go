// Package apperror defines the error kinds the HTTP layer knows how to render.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrAuthFailure     = errors.New("authentication failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrTooManyRequests = errors.New("too many requests")
	ErrUpstream        = errors.New("upstream failure")
	ErrNotImplemented  = errors.New("not implemented")
)

// AppError carries a client-facing message on top of one of the sentinel kinds.
type AppError struct {
	Err     error
	Message string
	Field   string
	Status  int
	Cause   error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func newError(kind error, status int, msg string) *AppError {
	return &AppError{Err: kind, Message: msg, Status: status}
}

func Validation(field, msg string) *AppError {
	e := newError(ErrValidation, http.StatusBadRequest, msg)
	e.Field = field
	return e
}

func AuthFailure(msg string) *AppError {
	return newError(ErrAuthFailure, http.StatusUnauthorized, msg)
}

// SignupRejected is an AuthFailure the provider raised while creating an account.
func SignupRejected(msg string) *AppError {
	return newError(ErrAuthFailure, http.StatusBadRequest, msg)
}

func Unauthenticated(msg string) *AppError {
	return newError(ErrUnauthenticated, http.StatusUnauthorized, msg)
}

func InvalidToken(msg string) *AppError {
	return newError(ErrInvalidToken, http.StatusUnauthorized, msg)
}

func TokenExpired(msg string) *AppError {
	return newError(ErrTokenExpired, http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *AppError {
	return newError(ErrForbidden, http.StatusForbidden, msg)
}

func NotFound(msg string) *AppError {
	return newError(ErrNotFound, http.StatusNotFound, msg)
}

func TooManyRequests(msg string) *AppError {
	return newError(ErrTooManyRequests, http.StatusTooManyRequests, msg)
}

func Upstream(msg string, cause error) *AppError {
	e := newError(ErrUpstream, http.StatusInternalServerError, msg)
	e.Cause = cause
	return e
}

func NotImplemented(msg string) *AppError {
	return newError(ErrNotImplemented, http.StatusNotImplemented, msg)
}

var kindStatus = []struct {
	kind   error
	status int
}{
	{ErrValidation, http.StatusBadRequest},
	{ErrAuthFailure, http.StatusUnauthorized},
	{ErrUnauthenticated, http.StatusUnauthorized},
	{ErrInvalidToken, http.StatusUnauthorized},
	{ErrTokenExpired, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrNotFound, http.StatusNotFound},
	{ErrTooManyRequests, http.StatusTooManyRequests},
	{ErrNotImplemented, http.StatusNotImplemented},
	{ErrUpstream, http.StatusInternalServerError},
}

// HTTPStatus maps err to a response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status
		}
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err, hiding internals of
// anything that is not an AppError.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return "Internal server error"
}
