package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type noopJob struct{}

func (n noopJob) Run(ctx context.Context) error { return nil }

type testJob struct{ run func(context.Context) error }

func (t testJob) Run(ctx context.Context) error { return t.run(ctx) }

func TestShardExecutor_SubmitAndStop(t *testing.T) {
	t.Parallel()
	exec := NewShardExecutor(Config{})
	defer exec.Stop()

	if err := exec.Submit(context.Background(), "document/1", noopJob{}); err != nil {
		t.Fatalf("submit error: %v", err)
	}
}

func TestShardExecutor_QueueFull(t *testing.T) {
	t.Parallel()
	cfg := Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond}
	exec := NewShardExecutor(cfg)
	defer exec.Stop()

	// Block the worker until we cancel.
	blockCtx, cancel := context.WithCancel(context.Background())
	var started int32
	_ = exec.Submit(context.Background(), "same", JobFunc(func(ctx context.Context) error {
		atomic.StoreInt32(&started, 1)
		<-blockCtx.Done()
		return nil
	}))
	for atomic.LoadInt32(&started) == 0 {
		time.Sleep(time.Millisecond)
	}

	// Fill the buffer.
	_ = exec.Submit(context.Background(), "same", noopJob{})
	err := exec.Submit(context.Background(), "same", noopJob{})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	var qf *QueueFullError
	if !errors.As(err, &qf) || qf.Capacity != 1 {
		t.Fatalf("expected QueueFullError with capacity 1, got %+v", qf)
	}
	cancel()
}

// FIFO ordering for a single key.
func TestShardExecutor_FIFOOrdering(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	wg.Add(5)
	for i := 0; i < 5; i++ {
		v := i
		if err := p.Submit(context.Background(), "document/7", testJob{run: func(ctx context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			wg.Done()
			return nil
		}}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for jobs")
	}

	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

// Jobs for different keys run in parallel (no head-of-line blocking).
func TestShardExecutor_ParallelDifferentKeys(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	start := make(chan struct{})
	done := make(chan struct{})

	_ = p.Submit(context.Background(), "A", testJob{run: func(context.Context) error {
		<-start
		close(done)
		return nil
	}})
	_ = p.Submit(context.Background(), "B", testJob{run: func(context.Context) error {
		close(start)
		<-done
		return nil
	}})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("jobs blocked each other; expected parallelism")
	}
}

// No overlap for the same key (serial execution guarantee).
func TestShardExecutor_SerialExecutionSameKey(t *testing.T) {
	const N = 200
	p := NewShardExecutor(Config{Shards: 4, QueueSize: N})
	defer p.Stop()

	var (
		inFlight        int32
		overlapDetected int32
		wg              sync.WaitGroup
	)
	wg.Add(N)

	for i := 0; i < N; i++ {
		_ = p.Submit(context.Background(), "X", testJob{run: func(context.Context) error {
			if atomic.AddInt32(&inFlight, 1) > 1 {
				atomic.StoreInt32(&overlapDetected, 1)
			}
			time.Sleep(time.Microsecond)
			atomic.AddInt32(&inFlight, -1)
			wg.Done()
			return nil
		}})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for serial jobs")
	}
	if atomic.LoadInt32(&overlapDetected) == 1 {
		t.Fatal("jobs for the same key overlapped")
	}
}

func TestShardExecutor_SubmitAfterStop(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{})
	p.Stop()
	if err := p.Submit(context.Background(), "k", noopJob{}); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestShardExecutor_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	p := NewShardExecutor(Config{})
	p.Stop()
	p.Stop()
	if err := p.Close(); err != nil {
		t.Fatalf("close error: %v", err)
	}
}
