// Package apperror holds the typed failures returned by the booking and
// payment services. Handlers map a Kind to an HTTP status; the wrapped
// cause is logged but never sent to clients.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindSeatConflict       Kind = "SEAT_CONFLICT"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindInvalidState       Kind = "INVALID_STATE"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInvalidSignature   Kind = "INVALID_SIGNATURE"
	KindUnsupportedGateway Kind = "UNSUPPORTED_GATEWAY"
	KindConfiguration      Kind = "CONFIGURATION_ERROR"
	KindInternal           Kind = "INTERNAL"
)

// Sentinels for errors.Is checks.
var (
	NotFound           = &Error{Kind: KindNotFound}
	InvalidInput       = &Error{Kind: KindInvalidInput}
	SeatConflict       = &Error{Kind: KindSeatConflict}
	InvalidTransition  = &Error{Kind: KindInvalidTransition}
	InvalidState       = &Error{Kind: KindInvalidState}
	Unauthorized       = &Error{Kind: KindUnauthorized}
	InvalidSignature   = &Error{Kind: KindInvalidSignature}
	UnsupportedGateway = &Error{Kind: KindUnsupportedGateway}
	ConfigurationError = &Error{Kind: KindConfiguration}
	Internal           = &Error{Kind: KindInternal}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, apperror.NotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
