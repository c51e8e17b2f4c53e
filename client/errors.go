package client

import (
	apierrors "github.com/paperless/paperless-go/client/internal/errors"
)

// APIError is the tagged error produced by every backend operation. Callers
// branch on its Kind instead of parsing status codes or message text.
type APIError = apierrors.Error

// ErrorKind re-exports the classification tags.
type ErrorKind = apierrors.Kind

const (
	ErrKindNetwork    = apierrors.KindNetwork
	ErrKindConflict   = apierrors.KindConflict
	ErrKindNotFound   = apierrors.KindNotFound
	ErrKindValidation = apierrors.KindValidation
	ErrKindServer     = apierrors.KindServer
)

// IsConflict reports whether err is a duplicate-detection conflict (409).
func IsConflict(err error) bool { return apierrors.IsConflict(err) }

// IsNotFound reports whether err is a not-found failure (404).
func IsNotFound(err error) bool { return apierrors.IsNotFound(err) }

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool { return apierrors.IsValidation(err) }

// ErrorKindOf extracts the classification from err (KindNetwork for
// unclassified failures).
func ErrorKindOf(err error) ErrorKind { return apierrors.KindOf(err) }

// NewValidationError builds a client-side validation failure. Components
// layered on this client use it to reject input before dispatch with the
// same error taxonomy the transport produces.
func NewValidationError(err error) *APIError { return apierrors.NewValidationError(err) }
