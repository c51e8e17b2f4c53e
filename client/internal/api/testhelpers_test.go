package api

import (
	"errors"

	apierrors "github.com/paperless/paperless-go/client/internal/errors"
)

func asAPIError(err error, target **apierrors.Error) bool {
	return errors.As(err, target)
}
