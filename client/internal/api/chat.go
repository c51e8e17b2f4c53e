package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	apierrors "github.com/paperless/paperless-go/client/internal/errors"
	"github.com/paperless/paperless-go/client/internal/types"
)

var errBlankQuery = errors.New("query must not be blank; normalize to the wildcard sentinel")

// SaveChatMessage persists one chat message via POST /v1/chat-messages.
func SaveChatMessage(ctx context.Context, httpClient *http.Client, baseURL string, req types.ChatMessageRequest) (*types.ChatMessageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateMessageRole(req.Role); err != nil {
		return nil, apierrors.NewValidationError(err)
	}
	if err := types.ValidateSessionID(req.SessionID); err != nil {
		return nil, apierrors.NewValidationError(err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat-messages", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("save chat message", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, classify("save chat message", resp)
	}

	var rec types.ChatMessageRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListChatMessages retrieves the ordered persisted history for a session.
func ListChatMessages(ctx context.Context, httpClient *http.Client, baseURL, sessionID string) ([]types.ChatMessageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateSessionID(sessionID); err != nil {
		return nil, apierrors.NewValidationError(err)
	}
	u := baseURL + "/v1/chat-messages?" + url.Values{"sessionId": {sessionID}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("list chat messages", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classify("list chat messages", resp)
	}

	var records []types.ChatMessageRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteChatMessages deletes all persisted messages for a session. Not
// best-effort: callers keep their local state when this fails.
func DeleteChatMessages(ctx context.Context, httpClient *http.Client, baseURL, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateSessionID(sessionID); err != nil {
		return apierrors.NewValidationError(err)
	}
	u := baseURL + "/v1/chat-messages?" + url.Values{"sessionId": {sessionID}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return netErr("delete chat messages", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return classify("delete chat messages", resp)
	}
	return nil
}

// GenerateCompletion requests an assistant reply via POST /v1/chat, passing
// the local history so the answer stays grounded in the conversation.
func GenerateCompletion(ctx context.Context, httpClient *http.Client, baseURL string, req types.ChatRequest) (*types.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, netErr("generate completion", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, classify("generate completion", resp)
	}

	var cr types.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, err
	}
	return &cr, nil
}
