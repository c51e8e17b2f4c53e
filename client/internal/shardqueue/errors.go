package shardqueue

import (
	"errors"
	"fmt"
)

// ErrExecutorClosed is returned by Submit after Stop has been called.
var ErrExecutorClosed = errors.New("shardqueue: executor closed")

// ErrQueueFull signals that a shard queue stayed full past EnqueueTimeout.
var ErrQueueFull = errors.New("shardqueue: queue full")

// QueueFullError carries shard occupancy details for diagnostics.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("shardqueue: shard %d full (%d/%d)", e.Shard, e.Length, e.Capacity)
}

// Unwrap lets callers match with errors.Is(err, ErrQueueFull).
func (e *QueueFullError) Unwrap() error { return ErrQueueFull }
