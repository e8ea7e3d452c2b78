package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Kind classifies a failure for status mapping and client display.
type Kind string

const (
	KindUnauthorized       Kind = "unauthorized"
	KindTooManyRequests    Kind = "rate_limited"
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindTimeout            Kind = "timeout"
	KindExternalService    Kind = "external_service_error"
	KindServiceUnavailable Kind = "service_unavailable"
	KindSchemaValidation   Kind = "schema_validation_error"
	KindContentTooShort    Kind = "content_too_short"
	KindContentTooLong     Kind = "content_too_long"
	KindInternal           Kind = "internal_error"
)

// Source says who produced a payload that failed schema validation.
type Source string

const (
	SourceAI     Source = "ai"
	SourceClient Source = "client"
)

// Error is the typed failure surfaced to handlers. Message is safe to show to end users.
type Error struct {
	Kind       Kind
	Message    string
	Err        error
	Shape      string
	Source     Source
	RetryAfter time.Duration
	Fallback   bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error { return New(KindValidation, message) }
func NotFound(message string) *Error   { return New(KindNotFound, message) }
func Conflict(message string) *Error   { return New(KindConflict, message) }

// Schema reports a payload that failed its shape check.
func Schema(shape, summary string, source Source) *Error {
	msg := "The AI returned an unexpected response. Please try again."
	if source == SourceClient {
		msg = "Invalid " + strings.ReplaceAll(shape, "_", " ") + ": " + summary
	}
	return &Error{
		Kind:    KindSchemaValidation,
		Message: msg,
		Err:     fmt.Errorf("%s failed validation: %s", shape, summary),
		Shape:   shape,
		Source:  source,
	}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	case KindValidation, KindContentTooShort, KindContentTooLong:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindExternalService:
		return http.StatusBadGateway
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindSchemaValidation:
		if e.Source == SourceClient {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-visible message for err, or def when err is untyped.
func Message(err error, def string) string {
	if e, ok := As(err); ok && strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return def
}

// FromTransport maps a failure from an external call onto the taxonomy. Typed errors pass
// through untouched; fallback is the message used for everything that is not a timeout.
func FromTransport(err error, fallback string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if isTimeout(err) {
		return Wrap(KindTimeout, "The request timed out. Please try again.", err)
	}
	return Wrap(KindExternalService, fallback, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "client.timeout") || strings.Contains(msg, "timeout awaiting")
}
