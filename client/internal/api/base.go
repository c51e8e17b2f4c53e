package api

import (
	"io"
	"net/http"

	apierrors "github.com/paperless/paperless-go/client/internal/errors"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 4096

// classify drains a non-2xx response into a tagged API error. The caller
// still owns resp.Body.
func classify(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return apierrors.FromStatus(operation, resp.StatusCode, string(body))
}

// netErr wraps a transport-level failure (no HTTP response was produced).
func netErr(operation string, err error) error {
	return apierrors.NewNetworkError(operation, err)
}
