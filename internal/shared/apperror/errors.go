package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindStorage
)

// AppError carries a client-safe message, optional field errors and the
// underlying cause. Only Message and Fields ever reach the client.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches two AppErrors of the same kind, message and field messages, so
// package-level sentinels built with these constructors work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Kind != t.Kind || e.Message != t.Message || len(e.Fields) != len(t.Fields) {
		return false
	}
	for k, want := range t.Fields {
		got, ok := e.Fields[k]
		if !ok || !slices.Equal(got, want) {
			return false
		}
	}
	return true
}

// Status maps the kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ====================================
// CONSTRUCTORS
// ====================================

// Validation creates a 422 error for a single field.
func Validation(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: "The given data was invalid.",
		Fields:  map[string][]string{field: {message}},
	}
}

// ValidationFields creates a 422 error from a prepared field map.
func ValidationFields(fields map[string][]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "The given data was invalid.", Fields: fields}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// Storage wraps an object storage failure. The cause is logged, never shown.
func Storage(err error) *AppError {
	return &AppError{Kind: KindStorage, Message: "File storage is temporarily unavailable.", Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error.", Err: err}
}

// ====================================
// HELPERS
// ====================================

// From returns err as an *AppError, wrapping unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an AppError of kind k.
func IsKind(err error, k Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == k
}

// WithCause returns a copy of e that wraps cause, keeping errors.Is(copy, e).
func (e *AppError) WithCause(cause error) *AppError {
	c := *e
	c.Err = cause
	return &c
}
