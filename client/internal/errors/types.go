// Package errors provides the tagged error type used across the client SDK.
// Backend failures are classified into a small set of kinds so callers can
// branch on meaning (conflict resolution, not-found display, validation
// short-circuit) instead of parsing status codes or message text.
package errors

import (
	"errors"
	"fmt"
)

// Kind tags an API error with its meaning.
type Kind int

const (
	// KindNetwork covers transport-level failures: connection refused,
	// DNS, timeouts surfaced by the transport.
	KindNetwork Kind = iota

	// KindConflict is an HTTP 409; for uploads it drives the
	// duplicate-resolution flow exclusively.
	KindConflict

	// KindNotFound is an HTTP 404.
	KindNotFound

	// KindValidation covers client-side input rejection and HTTP 400/422.
	KindValidation

	// KindServer covers 5xx and any other unexpected status.
	KindServer
)

// String returns the lowercase tag used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not-found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error wraps a failure with its classification, the original HTTP status
// (0 for non-HTTP failures) and the raw response body for diagnostics.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Kind, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Kind, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *Error) Unwrap() error { return e.Underlying }

// KindOf extracts the classification from err, or KindNetwork if err is not
// a classified error (unclassified failures are treated as transport noise).
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindNetwork
}

// IsConflict reports whether err is a duplicate-detection conflict (409).
func IsConflict(err error) bool { return is(err, KindConflict) }

// IsNotFound reports whether err is a not-found failure (404).
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return is(err, KindValidation) }

func is(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
