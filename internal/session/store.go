// Package session persists the opaque identifier that correlates an anonymous
// shopper's cart across requests. The identifier is generated once and reused
// for the life of the backing storage; it is never regenerated unless the
// storage is cleared.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store yields the persisted session identifier, creating one on first use.
// Get is idempotent: repeated calls against the same storage return the same
// identifier.
type Store interface {
	Get() (string, error)
}

// FileStore keeps the identifier in a single file, the durable-storage
// equivalent of the browser profile the original client relied on.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFileStore places the identifier under the user config directory.
func DefaultFileStore() (*FileStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return NewFileStore(filepath.Join(dir, "hafaloha", "session_id")), nil
}

func (s *FileStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
		// Empty file: fall through and regenerate.
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("read session id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write session id: %w", err)
	}
	return id, nil
}

// MemStore holds the identifier in memory only. Used by tests and ephemeral
// runs where persistence across processes is not wanted.
type MemStore struct {
	mu sync.Mutex
	id string
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Get() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s.id, nil
}
