// Package fault provides the error taxonomy shared across the service.
//
// Errors are classified by Kind rather than by concrete type so callers can
// branch on the failure class with errors.As without knowing which backend
// produced it. Kinds compose with %w wrapping: KindOf walks the chain and
// returns the outermost classified kind.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the failure class carried by classified errors.
type Kind string

const (
	// KindNotReady marks a required backend that has not finished
	// initialization (e.g. an empty or unreachable vector index).
	// Distinct from KindInfrastructure so callers can retry later
	// instead of treating the turn as failed.
	KindNotReady Kind = "not_ready"

	// KindInfrastructure marks a backend call that failed at the
	// transport or protocol level (store, index, model runtime).
	KindInfrastructure Kind = "infrastructure"

	// KindApplication marks a business-level failure surfaced to the
	// transport layer, usually wrapping an infrastructure failure with
	// user-safe context.
	KindApplication Kind = "application"

	// KindConfiguration marks missing or invalid static configuration
	// detected at construction time. Always fatal, never retried.
	KindConfiguration Kind = "configuration"
)

// Error is a classified error. Construct with New or Wrap.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// New creates a classified error with no underlying cause.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Newf creates a classified error from a format string.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. Returns nil if err is nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the failure class of this error.
func (e *Error) Kind() Kind {
	return e.kind
}

// KindOf returns the kind of the outermost classified error in the chain,
// or the empty string when the chain carries no classification.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return ""
}

// IsKind reports whether any classified error in the chain carries the
// given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var fe *Error
		if !errors.As(err, &fe) {
			return false
		}
		if fe.kind == kind {
			return true
		}
		err = fe.err
	}
	return false
}

// Retryable reports whether the failure class is worth retrying: backends
// that are not ready yet or failed at the infrastructure level. Application
// and configuration failures never are.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNotReady, KindInfrastructure:
		return true
	default:
		return false
	}
}
