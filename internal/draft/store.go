// Package draft persists serialized form snapshots in session-scoped storage.
//
// A Store is a plain string key-value boundary with no knowledge of the
// snapshot format. Backends:
//
//   - MemoryStore: lives as long as the process.
//   - FileStore: one file per key inside a per-session directory.
//   - RedisStore: session-prefixed keys with a TTL.
//
// Sealed wraps any of them with authenticated encryption.
package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultKey is the key the wizard stores its draft under.
const DefaultKey = "formulario_preocupacional_draft"

// ErrCorrupt is returned when a stored value cannot be opened.
var ErrCorrupt = errors.New("draft: corrupt value")

// Store is a session-scoped string key-value store.
type Store interface {
	// Read returns the value under key and whether it was found.
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// MemoryStore keeps values in a map.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Read(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Write(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
