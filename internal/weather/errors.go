package weather

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can decide how to react without
// inspecting messages.
type Kind string

const (
	KindInternal          Kind = "internal"
	KindSourceUnavailable Kind = "source_unavailable" // provider or network failure
	KindSourceMalformed   Kind = "source_malformed"   // unexpected payload shape
	KindStoreUnavailable  Kind = "store_unavailable"  // persistence failure
	KindNotFound          Kind = "not_found"          // unknown location
	KindBadInput          Kind = "bad_input"          // caller supplied invalid data
)

// Error carries a Kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err. It returns nil when err is nil.
// An err that already carries a kind keeps it.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether the scheduled path may see the failure clear on a
// later cycle. Caller errors never clear on their own.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindSourceUnavailable, KindStoreUnavailable:
		return true
	default:
		return false
	}
}
