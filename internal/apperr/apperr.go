// Package apperr defines the error kinds shared by the core, the services and the adapters.
// Callers match kinds with errors.Is against the exported sentinels.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindService           Kind = "service"
	KindActionInFlight    Kind = "action_in_flight"
)

// Error is a classified error. Message is surfaced to users verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is. They carry no message.
var (
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrService           = &Error{Kind: KindService}
	ErrActionInFlight    = &Error{Kind: KindActionInFlight}
)

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels compare by kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// InvalidTransition builds an invalid-transition error with a formatted message.
func InvalidTransition(format string, args ...any) error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error for an entity.
func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Service wraps a transport or backend failure. The message is kept as-is.
func Service(message string, err error) error {
	return &Error{Kind: KindService, Message: message, Err: err}
}

// InFlight reports that an action on the given order is still running.
func InFlight(orderID string) error {
	return &Error{Kind: KindActionInFlight, Message: fmt.Sprintf("an action on %s is already in progress", orderID)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// FromKind rebuilds a classified error from a wire kind and message.
// Unknown kinds become service errors.
func FromKind(kind Kind, message string) error {
	switch kind {
	case KindInvalidTransition, KindValidation, KindNotFound, KindActionInFlight:
		return &Error{Kind: kind, Message: message}
	default:
		return &Error{Kind: KindService, Message: message}
	}
}
