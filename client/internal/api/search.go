package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	apierrors "github.com/paperless/paperless-go/client/internal/errors"
	"github.com/paperless/paperless-go/client/internal/types"
)

// SearchDocuments runs a full-text search via POST /v1/documents/search.
// The request must already be normalized: an empty query is a caller bug, the
// pipeline replaces it with the wildcard sentinel before dispatch.
func SearchDocuments(ctx context.Context, httpClient *http.Client, baseURL string, req types.SearchRequest) (*types.SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Query == "" {
		return nil, apierrors.NewValidationError(errBlankQuery)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/documents/search", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("search documents", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classify("search documents", resp)
	}

	var sr types.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, err
	}
	return &sr, nil
}
