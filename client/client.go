// Package client is the SDK for the paperless document-management backend.
// It exposes synchronous, context-aware operations for file CRUD, search and
// chat plus an async, per-key FIFO write path for fire-and-forget deletes.
// The synchronization components (fetchcache, docsync, searchview, uploadflow,
// chatsession) build on top of it.
package client

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/paperless/paperless-go/client/internal/api"
	"github.com/paperless/paperless-go/client/internal/job"
	"github.com/paperless/paperless-go/client/internal/shardqueue"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	baseURL string
	http    *http.Client
	exec    executor

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the backend at baseURL.
// Additional options can be provided via functional arguments.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}
	if c.exec == nil {
		c.exec = newDefaultExecutor()
	}

	return c
}

// Close stops the background executor (if any). Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// AwaitConsistency blocks until all previously submitted async jobs for the
// given executor key have been executed. It works by submitting a no-op job
// and waiting for it to run, thereby guaranteeing FIFO ordering has flushed.
func (c *Client) AwaitConsistency(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan struct{})
	barrier := job.New(func(context.Context) error {
		close(done)
		return nil
	})
	if err := c.exec.Submit(ctx, key, barrier); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// AwaitDocument flushes pending async writes for one document id.
func (c *Client) AwaitDocument(ctx context.Context, id int64) error {
	return c.AwaitConsistency(ctx, job.DocumentKey(id))
}

// newDefaultExecutor constructs the shardqueue executor with sane defaults.
func newDefaultExecutor() *shardqueue.ShardExecutor {
	return shardqueue.NewShardExecutor(shardqueue.Config{Shards: 4, QueueSize: 1000})
}

// --------------------------------------------------------------------
// File operations - delegated to internal/api
// --------------------------------------------------------------------

// ListFiles retrieves file metadata, optionally narrowed by filters.
func (c *Client) ListFiles(ctx context.Context, params SearchParams) ([]FileMetadata, error) {
	return api.ListFiles(ctx, c.http, c.baseURL, params)
}

// GetFile retrieves a single document record by id.
func (c *Client) GetFile(ctx context.Context, id int64) (*FileMetadata, error) {
	return api.GetFile(ctx, c.http, c.baseURL, id)
}

// UploadFile creates a new document. A duplicate (filename, author) pair is
// reported as a conflict error; see the uploadflow package for resolution.
func (c *Client) UploadFile(ctx context.Context, req UploadRequest) (*FileMetadata, error) {
	meta, err := api.UploadFile(ctx, c.http, c.baseURL, req)
	observeUpload(err)
	return meta, err
}

// UpdateFile patches an existing document in place.
func (c *Client) UpdateFile(ctx context.Context, id int64, req UpdateRequest) (*FileMetadata, error) {
	return api.UpdateFile(ctx, c.http, c.baseURL, id, req)
}

// DeleteFile removes a document synchronously.
func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	return api.DeleteFile(ctx, c.http, c.baseURL, id)
}

// DeleteFileAsync submits the delete through the sharded executor, keeping
// writes for one document in submission order. Failures are reported through
// the executor's error handler; use AwaitDocument to flush.
func (c *Client) DeleteFileAsync(ctx context.Context, id int64) (*EnqueueAck, error) {
	ack, err := api.DeleteFileAsync(ctx, c.exec, c.http, c.baseURL, id)
	if err == nil {
		deletesEnqueuedTotal.WithLabelValues(job.ShardLabel(ack.Key)).Inc()
	}
	return ack, err
}

// DownloadFile streams a document's stored content. The caller must close
// the returned reader.
func (c *Client) DownloadFile(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	return api.DownloadFile(ctx, c.http, c.baseURL, id)
}

// --------------------------------------------------------------------
// Search operations - delegated to internal/api
// --------------------------------------------------------------------

// SearchDocuments runs a normalized full-text search query.
func (c *Client) SearchDocuments(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	return api.SearchDocuments(ctx, c.http, c.baseURL, req)
}

// --------------------------------------------------------------------
// Chat operations - delegated to internal/api
// --------------------------------------------------------------------

// SaveChatMessage persists one chat message.
func (c *Client) SaveChatMessage(ctx context.Context, req ChatMessageRequest) (*ChatMessageRecord, error) {
	return api.SaveChatMessage(ctx, c.http, c.baseURL, req)
}

// ListChatMessages retrieves the ordered persisted history for a session.
func (c *Client) ListChatMessages(ctx context.Context, sessionID string) ([]ChatMessageRecord, error) {
	return api.ListChatMessages(ctx, c.http, c.baseURL, sessionID)
}

// DeleteChatMessages deletes all persisted messages for a session.
func (c *Client) DeleteChatMessages(ctx context.Context, sessionID string) error {
	return api.DeleteChatMessages(ctx, c.http, c.baseURL, sessionID)
}

// GenerateCompletion requests an assistant reply grounded in the supplied
// conversation history.
func (c *Client) GenerateCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return api.GenerateCompletion(ctx, c.http, c.baseURL, req)
}
