// Package fetchcache provides a keyed request cache with in-flight
// deduplication and conditional polling. Every fetch is recorded under a
// structural Key; concurrent fetches for the same key share one backend
// call, and consumers read results back through Lookup so that a response
// for a superseded key is simply never read again rather than cancelled.
package fetchcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Fetcher produces the value for one key. It is invoked at most once per
// in-flight window regardless of how many callers ask for the key.
type Fetcher[V any] func(ctx context.Context) (V, error)

// Result is a point-in-time snapshot of one cache entry.
type Result[V any] struct {
	// Data is the last successfully fetched value for the key. When the
	// controller was built WithKeepPrevious and this key has never
	// resolved, Data carries the previous key's value so consumers can
	// keep rendering something during a transition.
	Data V
	// HasData reports whether Data is meaningful.
	HasData bool
	// Err is the error from the most recent fetch, nil after a success.
	// A failed refresh does not clear previously fetched Data.
	Err error
	// Loading reports whether a fetch for this key is currently in flight.
	Loading bool
	// Stale reports whether Data was borrowed from a previous key.
	Stale bool
}

type entry[V any] struct {
	data    V
	hasData bool
	err     error
}

type flight[V any] struct {
	done chan struct{}
	data V
	err  error
}

// Controller is a keyed fetch cache. The zero value is not usable; use New.
type Controller[V any] struct {
	mu           sync.Mutex
	entries      map[Key]*entry[V]
	inflight     map[Key]*flight[V]
	keepPrevious bool
	prev         V
	hasPrev      bool
}

// Option configures a Controller.
type Option[V any] func(*Controller[V])

// WithKeepPrevious makes Lookup fall back to the most recent successful
// value of any key while the requested key has not resolved yet. This is
// what keeps a result list on screen while a new query loads.
func WithKeepPrevious[V any]() Option[V] {
	return func(c *Controller[V]) { c.keepPrevious = true }
}

// New builds an empty controller.
func New[V any](opts ...Option[V]) *Controller[V] {
	c := &Controller[V]{
		entries:  make(map[Key]*entry[V]),
		inflight: make(map[Key]*flight[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch resolves key through fetcher and records the outcome. If a fetch
// for the same key is already in flight the caller joins it instead of
// issuing a second backend call. A successful fetch replaces the entry's
// value; a failed fetch records the error but keeps the last good value.
func (c *Controller[V]) Fetch(ctx context.Context, key Key, fetcher Fetcher[V]) (V, error) {
	c.mu.Lock()
	if f, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		dedupJoinedTotal.Inc()
		select {
		case <-f.done:
			return f.data, f.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	f := &flight[V]{done: make(chan struct{})}
	c.inflight[key] = f
	c.mu.Unlock()

	v, err := fetcher(ctx)

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{}
		c.entries[key] = e
	}
	if err == nil {
		e.data = v
		e.hasData = true
		e.err = nil
		c.prev = v
		c.hasPrev = true
		fetchesTotal.WithLabelValues("ok").Inc()
	} else {
		e.err = err
		fetchesTotal.WithLabelValues("error").Inc()
	}
	delete(c.inflight, key)
	f.data, f.err = v, err
	close(f.done)
	c.mu.Unlock()

	return v, err
}

// FetchAsync runs Fetch in its own goroutine and invokes onDone with the
// outcome. onDone may be nil for pure fire-and-forget revalidation; it is
// called regardless of whether the key is still current, so callers enforce
// last-key-wins themselves.
func (c *Controller[V]) FetchAsync(ctx context.Context, key Key, fetcher Fetcher[V], onDone func(V, error)) {
	go func() {
		v, err := c.Fetch(ctx, key, fetcher)
		if onDone != nil {
			onDone(v, err)
		}
	}()
}

// Lookup returns the current snapshot for key without touching the backend.
func (c *Controller[V]) Lookup(key Key) Result[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	var r Result[V]
	if e, ok := c.entries[key]; ok {
		r.Data = e.data
		r.HasData = e.hasData
		r.Err = e.err
	}
	_, r.Loading = c.inflight[key]
	if !r.HasData && c.keepPrevious && c.hasPrev {
		r.Data = c.prev
		r.HasData = true
		r.Stale = true
	}
	return r
}

// Invalidate drops the entry for key. The next Fetch starts from scratch
// and Lookup reports no data until it resolves.
func (c *Controller[V]) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// PollUntil fetches key on a fixed interval until done reports true for a
// fetched value or ctx is cancelled. Fetch errors do not stop the loop; the
// next tick tries again. The first fetch happens immediately.
func (c *Controller[V]) PollUntil(ctx context.Context, key Key, fetcher Fetcher[V], interval time.Duration, done func(V) bool) error {
	errPending := errors.New("fetchcache: condition not met")
	op := func() error {
		pollTicksTotal.Inc()
		v, err := c.Fetch(ctx, key, fetcher)
		if err != nil {
			return err
		}
		if done(v) {
			return nil
		}
		return errPending
	}
	bo := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	return backoff.Retry(op, bo)
}
