package client

import (
	"context"

	"github.com/paperless/paperless-go/client/internal/shardqueue"
)

// executor abstracts the internal async job runner used by async APIs.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Stop()
}

// noOpExecutor backs sync-only clients constructed with WithoutExecutor.
type noOpExecutor struct{}

func (noOpExecutor) Submit(context.Context, string, shardqueue.Job) error {
	panic("attempted to use an async operation (DeleteFileAsync/AwaitConsistency) on a sync-only client")
}
func (noOpExecutor) Stop() {}
