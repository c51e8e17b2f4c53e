package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestAwaitDocument_FlushesAsyncDelete(t *testing.T) {
	t.Parallel()
	var deletes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			atomic.AddInt32(&deletes, 1)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	defer func() { _ = c.Close() }()

	ack, err := c.DeleteFileAsync(context.Background(), 42)
	if err != nil {
		t.Fatalf("DeleteFileAsync: %v", err)
	}
	if ack.Status != "enqueued" {
		t.Fatalf("unexpected ack %+v", ack)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.AwaitDocument(ctx, 42); err != nil {
		t.Fatalf("AwaitDocument: %v", err)
	}
	if atomic.LoadInt32(&deletes) != 1 {
		t.Fatal("async delete did not reach the backend before the barrier")
	}
}

func TestAwaitConsistency_CancelledContext(t *testing.T) {
	t.Parallel()
	c := New("http://localhost:9")
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.AwaitConsistency(ctx, "document/1"); err == nil {
		t.Fatal("expected context error")
	}
}
