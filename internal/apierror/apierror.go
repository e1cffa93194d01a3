// Package apierror provides the error taxonomy shared by services and handlers,
// plus the standardized response envelope. All errors returned to clients go
// through this package so internal details (SQL errors, stack traces) never leak.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"

	// Only produced by the HTTP middleware.
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindTooManyRequests Kind = "too_many_requests"
)

// Error is the typed error carried from repositories and services up to handlers.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports bad input. Never retried.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationField reports bad input tied to a single field.
func ValidationField(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: map[string]string{field: msg}}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a uniqueness or concurrent-write collision.
func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

// Internal wraps persistence/transport failures. The message is generic on purpose.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Error interno del servidor", Err: cause}
}

// KindOf returns the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a Kind to the conventional status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Kind    Kind              `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func New(kind Kind, msg string) *APIError {
	return &APIError{Kind: kind, Message: msg}
}

// NewValidation wraps multiple field errors.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Message: "Error de validacion", Fields: fields}
}

// FromError builds the envelope for a typed error. Internal errors get a generic message.
func FromError(err error) *APIError {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return &APIError{Kind: e.Kind, Message: e.Message, Fields: e.Fields}
	}
	return &APIError{Kind: KindInternal, Message: "Error interno del servidor"}
}
