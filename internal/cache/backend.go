// file: internal/cache/backend.go
// version: 1.0.0
// guid: 8c33f83b-874c-4bbc-9176-4053bc2c1916

package cache

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by a Backend when no value is stored under a key.
var ErrNotFound = errors.New("cache entry not found")

// Backend persists raw cache payloads addressed by slot and key.
// Implementations must be safe for concurrent use.
type Backend interface {
	Load(slot, key string) ([]byte, error)
	Save(slot, key string, data []byte) error
	Close() error
}

// MemoryBackend keeps payloads in a map. It does not survive restarts.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryBackend creates an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(slot, key string) ([]byte, error) {
	m.mu.RLock()
	data, ok := m.items[storageKey(slot, key)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryBackend) Save(slot, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.mu.Lock()
	m.items[storageKey(slot, key)] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// Keys lists the keys stored in a slot, sorted.
func (m *MemoryBackend) Keys(slot string) ([]string, error) {
	prefix := storageKey(slot, "")
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Lister is implemented by backends that can enumerate a slot.
type Lister interface {
	Keys(slot string) ([]string, error)
}

func storageKey(slot, key string) string {
	return "cache:" + slot + ":" + key
}
