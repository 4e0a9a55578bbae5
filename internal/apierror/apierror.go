// Package apierror classifies request failures so the HTTP layer can map
// them to a status code and a structured body.
package apierror

import (
	"fmt"
	"net/http"
)

// Kind is the failure class of an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindPersistence
	KindAdapter
	KindUnavailable
)

// Code is the machine-readable value returned in the "error" field.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindPersistence:
		return "persistence_failed"
	case KindAdapter:
		return "adapter_failed"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// Status is the HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindAdapter:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to clients; Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error {
	return New(KindValidation, message, nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Conflict(message string, cause error) *Error {
	return New(KindConflict, message, cause)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message, nil)
}

func Persistence(message string, cause error) *Error {
	return New(KindPersistence, message, cause)
}

func Adapter(message string, cause error) *Error {
	return New(KindAdapter, message, cause)
}

func Unavailable(message string) *Error {
	return New(KindUnavailable, message, nil)
}
