// Package docsync keeps one document's local view consistent with the
// backend record. It owns the viewing/editing/saving lifecycle, publishes
// optimistic author edits before the network resolves, rolls them back on
// failure, and polls the backend while the generated summary is pending.
package docsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paperless/paperless-go/client"
	"github.com/paperless/paperless-go/fetchcache"
)

// State is the edit lifecycle phase of a document view.
type State string

const (
	StateViewing State = "viewing"
	StateEditing State = "editing"
	StateSaving  State = "saving"
)

// DefaultPollInterval is how often the summary poll re-fetches the record
// while the backend has not produced a summary yet.
const DefaultPollInterval = 5 * time.Second

// Backend is the slice of the API client the machine needs. *client.Client
// satisfies it.
type Backend interface {
	GetFile(ctx context.Context, id int64) (*client.FileMetadata, error)
	UpdateFile(ctx context.Context, id int64, req client.UpdateRequest) (*client.FileMetadata, error)
	DeleteFileAsync(ctx context.Context, id int64) (*client.EnqueueAck, error)
}

// Snapshot is a point-in-time view of the machine for rendering.
type Snapshot struct {
	State State
	// Record is the value to display: the optimistic projection while an
	// author-only save is in flight, otherwise the authoritative record.
	// Nil before the initial fetch resolves and after a delete.
	Record  *client.FileMetadata
	Err     error
	Deleted bool
}

// Machine synchronizes one document. Create with New, load with Start.
// Methods are safe for concurrent use; user-initiated operations are issued
// in call order under the machine's lock.
type Machine struct {
	backend Backend
	cache   *fetchcache.Controller[*client.FileMetadata]
	id      int64
	logger  zerolog.Logger

	pollInterval time.Duration

	mu            sync.Mutex
	state         State
	authoritative *client.FileMetadata
	optimistic    *client.FileMetadata
	lastErr       error
	deleted       bool

	pollCancel   context.CancelFunc
	pollDone     chan struct{}
	summaryReady chan struct{}
	summarySeen  bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithPollInterval overrides the summary poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithLogger routes the machine's poll diagnostics to a specific logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

// New builds a machine for one document id. No network happens until Start.
func New(backend Backend, id int64, opts ...Option) *Machine {
	m := &Machine{
		backend:      backend,
		cache:        fetchcache.New[*client.FileMetadata](),
		id:           id,
		logger:       log.Logger,
		pollInterval: DefaultPollInterval,
		state:        StateViewing,
		summaryReady: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start fetches the authoritative record and, when its summary is still
// empty, begins polling in the background until the summary appears. The
// poll stops permanently for this machine once a summary is observed.
func (m *Machine) Start(ctx context.Context) error {
	rec, err := m.fetch(ctx)
	m.mu.Lock()
	if err != nil {
		m.lastErr = err
		m.mu.Unlock()
		return err
	}
	m.authoritative = rec
	m.lastErr = nil
	if rec.HasSummary() {
		m.markSummarySeen()
		m.mu.Unlock()
		return nil
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	m.pollCancel = cancel
	m.pollDone = make(chan struct{})
	m.mu.Unlock()

	go m.pollSummary(pollCtx)
	return nil
}

// Stop cancels background polling and waits for it to finish. Safe to call
// whether or not a poll is running.
func (m *Machine) Stop() {
	m.mu.Lock()
	cancel, done := m.pollCancel, m.pollDone
	m.pollCancel, m.pollDone = nil, nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Machine) pollSummary(ctx context.Context) {
	defer close(m.pollDone)
	err := m.cache.PollUntil(ctx, fetchcache.DocumentKey(m.id),
		func(ctx context.Context) (*client.FileMetadata, error) {
			rec, err := m.backend.GetFile(ctx, m.id)
			if err != nil {
				return nil, err
			}
			m.absorbPoll(rec)
			return rec, nil
		},
		m.pollInterval,
		func(rec *client.FileMetadata) bool { return rec.HasSummary() },
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Warn().Err(err).Int64("fileId", m.id).Msg("summary poll stopped")
	}
}

// absorbPoll folds a polled record into the authoritative baseline. An
// active optimistic projection stays on top; the poll never overwrites it.
func (m *Machine) absorbPoll(rec *client.FileMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleted {
		return
	}
	m.authoritative = rec
	if rec.HasSummary() {
		m.markSummarySeen()
	}
}

// markSummarySeen must be called with m.mu held.
func (m *Machine) markSummarySeen() {
	if !m.summarySeen {
		m.summarySeen = true
		close(m.summaryReady)
	}
}

// WaitForSummary blocks until the backend summary has been observed or ctx
// is cancelled.
func (m *Machine) WaitForSummary(ctx context.Context) error {
	select {
	case <-m.summaryReady:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Machine) fetch(ctx context.Context) (*client.FileMetadata, error) {
	return m.cache.Fetch(ctx, fetchcache.DocumentKey(m.id),
		func(ctx context.Context) (*client.FileMetadata, error) {
			return m.backend.GetFile(ctx, m.id)
		})
}

// BeginEdit moves viewing to editing. No network effect.
func (m *Machine) BeginEdit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleted {
		return errors.New("docsync: document deleted")
	}
	if m.state != StateViewing {
		return fmt.Errorf("docsync: cannot edit in state %q", m.state)
	}
	if m.authoritative == nil {
		return errors.New("docsync: record not loaded")
	}
	m.state = StateEditing
	return nil
}

// CancelEdit abandons an edit and returns to viewing.
func (m *Machine) CancelEdit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateEditing {
		return fmt.Errorf("docsync: cannot cancel in state %q", m.state)
	}
	m.state = StateViewing
	return nil
}

// Save submits the pending edit. For an author-only change an optimistic
// record (same identity, new author, edit time now) is visible immediately;
// a change that replaces file content shows no fabricated record and the
// caller renders the saving state instead. On success the server response
// replaces the local record wholesale. On failure the pre-edit record is
// restored and the error returned.
func (m *Machine) Save(ctx context.Context, req client.UpdateRequest) (*client.FileMetadata, error) {
	m.mu.Lock()
	if m.state != StateEditing {
		m.mu.Unlock()
		return nil, fmt.Errorf("docsync: cannot save in state %q", m.state)
	}
	if req.Author == "" && !req.HasFile() && req.Filename == "" {
		m.mu.Unlock()
		return nil, client.NewValidationError(errors.New("docsync: nothing to save"))
	}
	m.state = StateSaving
	if !req.HasFile() && req.Author != "" && req.Filename == "" {
		proj := *m.authoritative
		proj.Author = req.Author
		proj.LastEdited = time.Now()
		m.optimistic = &proj
	}
	m.mu.Unlock()

	rec, err := m.backend.UpdateFile(ctx, m.id, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateViewing
	m.optimistic = nil
	if err != nil {
		m.lastErr = err
		return nil, err
	}
	m.lastErr = nil
	m.authoritative = rec
	m.cache.Invalidate(fetchcache.DocumentKey(m.id))
	if rec.HasSummary() {
		m.markSummarySeen()
	}
	return rec, nil
}

// Delete enqueues a fire-and-forget delete and marks the view gone. The
// record is no longer rendered once the enqueue resolves.
func (m *Machine) Delete(ctx context.Context) (*client.EnqueueAck, error) {
	ack, err := m.backend.DeleteFileAsync(ctx, m.id)
	if err != nil {
		return nil, err
	}
	m.Stop()
	m.mu.Lock()
	m.deleted = true
	m.authoritative = nil
	m.optimistic = nil
	m.mu.Unlock()
	return ack, nil
}

// Refresh re-fetches the authoritative record outside the poll cycle.
func (m *Machine) Refresh(ctx context.Context) (*client.FileMetadata, error) {
	m.cache.Invalidate(fetchcache.DocumentKey(m.id))
	rec, err := m.fetch(ctx)
	if err != nil {
		return nil, err
	}
	m.absorbPoll(rec)
	return rec, nil
}

// Deleted reports whether the document was removed through Delete.
func (m *Machine) Deleted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleted
}

// Document returns the record to display, nil before the initial fetch
// resolves and after a delete.
func (m *Machine) Document() *client.FileMetadata {
	return m.Snapshot().Record
}

// Snapshot returns the current render state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{State: m.state, Err: m.lastErr, Deleted: m.deleted}
	switch {
	case m.deleted:
	case m.optimistic != nil:
		s.Record = m.optimistic
	default:
		s.Record = m.authoritative
	}
	return s
}
