// Package apperr defines the error taxonomy shared by the services, the
// provider clients and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure independently of where it happened.
type Kind string

const (
	// KindValidation is bad or missing caller input. Never retried.
	KindValidation Kind = "validation_error"

	// KindNotFound means a referenced entity does not exist.
	KindNotFound Kind = "not_found"

	// KindConfiguration means a provider credential is missing or rejected.
	KindConfiguration Kind = "configuration_error"

	// KindProvider means an external service failed or could not be reached.
	KindProvider Kind = "provider_error"

	// KindInternal is an unexpected failure, typically from the record store.
	KindInternal Kind = "internal_error"
)

// Error is the concrete error type carried through the application.
type Error struct {
	Kind     Kind
	Message  string
	Category string // provider's own classification, e.g. "unsupported-code"
	Provider string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Provider)
	}
	if e.Category != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Category)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a KindValidation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound returns a KindNotFound error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Configuration returns a KindConfiguration error for the named provider.
func Configuration(provider, message string) *Error {
	return &Error{Kind: KindConfiguration, Provider: provider, Message: message}
}

// Provider returns a KindProvider error. category may be empty.
func Provider(provider, message, category string, err error) *Error {
	return &Error{
		Kind:     KindProvider,
		Provider: provider,
		Message:  message,
		Category: category,
		Err:      err,
	}
}

// Internal wraps an unexpected error. The underlying error is logged by the
// caller and never shown to clients.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps err to the status code a single-purpose endpoint returns.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to clients.
// Underlying causes are never included.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal server error"
	}
	return e.Message
}

// CategoryOf returns the provider classification carried by err, if any.
func CategoryOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}
