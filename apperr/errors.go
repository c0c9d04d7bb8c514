// Package apperr is the fixed error taxonomy shared by the engines and handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	CodeDenied       Code = "DENIED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeConflict     Code = "CONFLICT"
	CodeInfra        Code = "INFRA"
)

// Error is the domain error type.
type Error struct {
	Code      Code
	Message   string // safe to show to callers
	Retryable bool   // only meaningful for CodeInfra
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code so callers can write errors.Is(err, apperr.ErrDenied).
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is comparisons.
var (
	ErrDenied       = &Error{Code: CodeDenied, Message: "permission denied"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidInput = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "already exists"}
	ErrInfra        = &Error{Code: CodeInfra, Message: "internal error"}
)

func Denied() *Error {
	return &Error{Code: CodeDenied, Message: "permission denied"}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func InvalidInput(message string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// Infra wraps a persistence failure. The cause is kept, never replaced.
func Infra(message string, cause error) *Error {
	return &Error{Code: CodeInfra, Message: message, Cause: cause}
}

// Retryable wraps a transient persistence failure (busy store, exhausted pool, timeout).
func Retryable(message string, cause error) *Error {
	return &Error{Code: CodeInfra, Message: message, Retryable: true, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInfra.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInfra
}

// IsRetryable reports whether err is a transient infrastructure failure.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeInfra && e.Retryable
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	}
	if IsRetryable(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text safe to return to callers. Infra causes are never exposed.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != CodeInfra {
		return e.Message
	}
	if IsRetryable(err) {
		return "service busy, retry later"
	}
	return "internal error"
}
