package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// FromStatus classifies a non-2xx HTTP response. The body is trimmed and
// kept verbatim so the UI can surface the backend's own message text.
func FromStatus(operation string, statusCode int, body string) *Error {
	return &Error{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Body:       strings.TrimSpace(body),
		Underlying: fmt.Errorf("%s: status %d", operation, statusCode),
	}
}

// NewNetworkError wraps a transport-level failure.
func NewNetworkError(operation string, err error) *Error {
	return &Error{
		Kind:       KindNetwork,
		Underlying: fmt.Errorf("%s: %w", operation, err),
	}
}

// NewValidationError reports client-side input rejection. No request is
// dispatched for these.
func NewValidationError(err error) *Error {
	return &Error{
		Kind:       KindValidation,
		Underlying: err,
	}
}

func kindForStatus(statusCode int) Kind {
	switch {
	case statusCode == http.StatusConflict:
		return KindConflict
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindServer
	}
}
