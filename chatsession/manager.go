// Package chatsession manages one persisted chat conversation: a durable
// session identifier, history hydration from the backend, optimistic local
// echo of sent messages, and an all-or-nothing clear.
package chatsession

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paperless/paperless-go/client"
)

// SessionStorageKey is the store key holding the current session id.
const SessionStorageKey = "chat.sessionId"

// Backend is the slice of the API client the manager needs.
// *client.Client satisfies it.
type Backend interface {
	SaveChatMessage(ctx context.Context, req client.ChatMessageRequest) (*client.ChatMessageRecord, error)
	ListChatMessages(ctx context.Context, sessionID string) ([]client.ChatMessageRecord, error)
	DeleteChatMessages(ctx context.Context, sessionID string) error
	GenerateCompletion(ctx context.Context, req client.ChatRequest) (*client.ChatResponse, error)
}

// Manager owns one chat session. Create with NewManager.
type Manager struct {
	backend Backend
	store   Store
	logger  zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	sessionID string
	messages  []client.ChatMessage
	loaded    bool
	sendErr   error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes manager diagnostics to a specific logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager resumes the session recorded in store, or starts and persists
// a fresh one. History continuity across restarts comes entirely from the
// stored identifier; no messages are fetched until Hydrate.
func NewManager(backend Backend, store Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		backend: backend,
		store:   store,
		logger:  log.Logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	id, err := store.Get(SessionStorageKey)
	if err != nil {
		return nil, fmt.Errorf("read session id: %w", err)
	}
	if id == "" {
		id = m.newSessionID()
		if err := store.Set(SessionStorageKey, id); err != nil {
			return nil, fmt.Errorf("persist session id: %w", err)
		}
	}
	m.sessionID = id
	return m, nil
}

func (m *Manager) newSessionID() string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("session-%d-%s", m.now().UnixMilli(), suffix)
}

// SessionID returns the current session identifier.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Messages returns a copy of the local message sequence in send order.
func (m *Manager) Messages() []client.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]client.ChatMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Loaded reports whether Hydrate has completed. It distinguishes "history
// not fetched yet" from "history fetched and empty".
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Err returns the error from the most recent Send, nil after a clean send.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendErr
}

// Hydrate fetches persisted history for the current session. A fetch
// failure degrades to an empty history rather than failing the session;
// the loaded flag is set either way.
func (m *Manager) Hydrate(ctx context.Context) {
	m.mu.Lock()
	sessionID := m.sessionID
	m.mu.Unlock()

	records, err := m.backend.ListChatMessages(ctx, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionID != m.sessionID {
		// session rotated while the fetch was in flight
		return
	}
	m.loaded = true
	if err != nil {
		m.logger.Warn().Err(err).Str("sessionId", sessionID).Msg("history hydration failed, starting empty")
		return
	}
	m.messages = m.messages[:0]
	for _, rec := range records {
		m.messages = append(m.messages, client.ChatMessage{
			ID:        strconv.FormatInt(rec.ID, 10),
			Role:      client.MessageRole(rec.Role),
			Content:   rec.Content,
			Timestamp: rec.Timestamp,
			SessionID: rec.SessionID,
		})
	}
}

// Send appends the user's message locally before any network round trip,
// persists it, generates a completion grounded in the full local history,
// then appends and persists the assistant reply. Any failure along the way
// is converted into an in-band assistant message so the transcript stays
// legible; the user's own message is never retracted. The failure is also
// returned and kept readable via Err.
func (m *Manager) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return client.NewValidationError(errEmptyMessage)
	}
	m.mu.Lock()
	sessionID := m.sessionID
	userMsg := client.ChatMessage{
		ID:        uuid.NewString(),
		Role:      client.RoleUser,
		Content:   text,
		Timestamp: m.now(),
		SessionID: sessionID,
	}
	m.messages = append(m.messages, userMsg)
	history := make([]client.ChatMessage, len(m.messages))
	copy(history, m.messages)
	m.sendErr = nil
	m.mu.Unlock()

	err := m.exchange(ctx, sessionID, text, history)
	if err == nil {
		return nil
	}

	m.mu.Lock()
	m.sendErr = err
	m.messages = append(m.messages, client.ChatMessage{
		ID:        uuid.NewString(),
		Role:      client.RoleAssistant,
		Content:   fmt.Sprintf("Sorry, I encountered an error: %v", err),
		Timestamp: m.now(),
		SessionID: sessionID,
	})
	m.mu.Unlock()
	return err
}

// exchange runs the three network legs of one send.
func (m *Manager) exchange(ctx context.Context, sessionID, text string, history []client.ChatMessage) error {
	if _, err := m.backend.SaveChatMessage(ctx, client.ChatMessageRequest{
		Role:      string(client.RoleUser),
		Content:   text,
		SessionID: sessionID,
	}); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}

	resp, err := m.backend.GenerateCompletion(ctx, client.ChatRequest{
		Message:             text,
		ConversationHistory: history,
	})
	if err != nil {
		return fmt.Errorf("generate completion: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("generate completion: %s", resp.Error)
	}

	m.mu.Lock()
	m.messages = append(m.messages, client.ChatMessage{
		ID:        uuid.NewString(),
		Role:      client.RoleAssistant,
		Content:   resp.Message,
		Timestamp: m.now(),
		SessionID: sessionID,
	})
	m.mu.Unlock()

	if _, err := m.backend.SaveChatMessage(ctx, client.ChatMessageRequest{
		Role:      string(client.RoleAssistant),
		Content:   resp.Message,
		SessionID: sessionID,
	}); err != nil {
		return fmt.Errorf("persist assistant message: %w", err)
	}
	return nil
}

// Clear deletes the session's persisted messages, then resets local state
// and rotates to a new persisted session id. Deletion is not best-effort:
// on failure local state is untouched and the error returned.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	sessionID := m.sessionID
	m.mu.Unlock()

	if err := m.backend.DeleteChatMessages(ctx, sessionID); err != nil {
		return fmt.Errorf("delete chat history: %w", err)
	}

	next := m.newSessionID()
	if err := m.store.Set(SessionStorageKey, next); err != nil {
		return fmt.Errorf("persist session id: %w", err)
	}

	m.mu.Lock()
	m.sessionID = next
	m.messages = nil
	m.loaded = true
	m.sendErr = nil
	m.mu.Unlock()
	return nil
}

var errEmptyMessage = errors.New("chatsession: empty message")
