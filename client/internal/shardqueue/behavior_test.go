package shardqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// A failed job is reported once through the ErrorHandler and never re-run.
func TestShardExecutor_NoAutomaticRetry(t *testing.T) {
	t.Parallel()
	var handled int32
	p := NewShardExecutor(Config{
		Shards: 1, QueueSize: 4,
		ErrorHandler: func(error) { atomic.AddInt32(&handled, 1) },
	})
	defer p.Stop()

	var runs int32
	_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("write failed")
	}))
	if err := p.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("job ran %d times, want exactly 1", got)
	}
	if got := atomic.LoadInt32(&handled); got != 1 {
		t.Fatalf("handler called %d times, want 1", got)
	}
}

func TestShardExecutor_ErrorHandlerPanicContained(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{
		Shards: 1, QueueSize: 4,
		ErrorHandler: func(error) { panic("handler bug") },
	})
	defer p.Stop()

	_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		return errors.New("boom")
	}))
	// Executor must survive the handler panic and keep serving.
	if err := p.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier after handler panic: %v", err)
	}
}

// A job whose context is already cancelled is skipped, keeping the shard live.
func TestShardExecutor_CanceledJobSkipped(t *testing.T) {
	t.Parallel()
	var handled int32
	p := NewShardExecutor(Config{
		Shards: 1, QueueSize: 4,
		ErrorHandler: func(error) { atomic.AddInt32(&handled, 1) },
	})
	defer p.Stop()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		time.Sleep(5 * time.Millisecond) // let the cancelled job queue behind us
		return nil
	}))
	_ = p.Submit(cancelled, "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}))
	if err := p.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("cancelled job must not run")
	}
	if atomic.LoadInt32(&handled) != 1 {
		t.Fatal("cancellation must be reported to the error handler")
	}
}

func TestShardExecutor_StopDrainsQueuedJobs(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 16})

	release := make(chan struct{})
	var done int32
	_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		<-release
		return nil
	}))
	for i := 0; i < 5; i++ {
		_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
			atomic.AddInt32(&done, 1)
			return nil
		}))
	}
	close(release)
	p.Stop() // must wait for the drain

	if got := atomic.LoadInt32(&done); got != 5 {
		t.Fatalf("drained %d queued jobs, want 5", got)
	}
}

func TestShardExecutor_SubmitContextCancel(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: time.Second})
	defer p.Stop()

	// Occupy the worker and fill the queue so the next Submit blocks.
	block := make(chan struct{})
	defer close(block)
	_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		<-block
		return nil
	}))
	_ = p.Submit(context.Background(), "k", noopJob{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := p.Submit(ctx, "k", noopJob{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestShardExecutor_BarrierFlushesKey(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{Shards: 2, QueueSize: 8})
	defer p.Stop()

	var seen int32
	for i := 0; i < 3; i++ {
		_ = p.Submit(context.Background(), "document/9", JobFunc(func(context.Context) error {
			atomic.AddInt32(&seen, 1)
			return nil
		}))
	}
	if err := p.Barrier(context.Background(), "document/9"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&seen) != 3 {
		t.Fatal("barrier returned before prior jobs completed")
	}
}
