package chatsession

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is the injected client-local durable storage the manager persists
// its session identifier in. Get returns ("", nil) for an absent key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemStore builds an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *MemStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

// FileStore persists each key as one small file under a directory, so a
// session identifier survives process restarts.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	// keys are dotted identifiers, not user input; flatten separators
	// anyway so a key can never escape the store directory
	return filepath.Join(s.dir, strings.ReplaceAll(key, string(os.PathSeparator), "_"))
}

func (s *FileStore) Get(key string) (string, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *FileStore) Set(key, value string) error {
	return os.WriteFile(s.path(key), []byte(value+"\n"), 0o600)
}
