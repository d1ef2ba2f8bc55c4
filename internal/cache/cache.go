// file: internal/cache/cache.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-1e2f3a4b5c6d

// Package cache provides TTL-scoped cache slots over a persistent byte store.
package cache

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jdfalk/newsdeck/internal/metrics"
)

// Slot names and TTLs.
const (
	NewsSlot    = "news_cache"
	WeatherSlot = "weather_cache"
	SportsSlot  = "sports_cache"

	NewsTTL    = 60 * time.Minute
	WeatherTTL = 10 * time.Minute
	SportsTTL  = 30 * time.Second

	// WeatherKey is the single global key used by the weather slot.
	WeatherKey = "current"
)

// Entry is a cached value with the time it was stored.
type Entry[T any] struct {
	Value    T         `json:"value"`
	StoredAt time.Time `json:"storedAt"`
}

// Fresh reports whether the entry is within ttl of now.
func (e Entry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) <= ttl
}

// Store is the process-wide cache shared by every client.
type Store struct {
	backend Backend

	mu  sync.RWMutex
	now func() time.Time
}

// NewStore wraps a backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

// NewMemoryStore returns a Store over a fresh MemoryBackend.
func NewMemoryStore() *Store {
	return NewStore(NewMemoryBackend())
}

// SetClock overrides the time source (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Backend exposes the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) clock() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

// Slot is a typed view over one named slot of a Store.
type Slot[T any] struct {
	store *Store
	name  string
	ttl   time.Duration
}

// NewSlot binds a typed slot with its TTL to the store.
func NewSlot[T any](store *Store, name string, ttl time.Duration) *Slot[T] {
	return &Slot[T]{store: store, name: name, ttl: ttl}
}

// Name returns the slot name.
func (s *Slot[T]) Name() string { return s.name }

// TTL returns the slot freshness window.
func (s *Slot[T]) TTL() time.Duration { return s.ttl }

// Read returns the entry only if it is still fresh.
func (s *Slot[T]) Read(key string) (Entry[T], bool) {
	entry, ok := s.load(key)
	if !ok {
		return entry, false
	}
	if !entry.Fresh(s.store.clock(), s.ttl) {
		metrics.IncCacheRead(s.name, "expired")
		return Entry[T]{}, false
	}
	metrics.IncCacheRead(s.name, "hit")
	return entry, true
}

// ReadStale returns the entry regardless of age. It is the last-resort
// fallback when a live fetch has failed.
func (s *Slot[T]) ReadStale(key string) (Entry[T], bool) {
	entry, ok := s.load(key)
	if ok {
		metrics.IncCacheRead(s.name, "stale")
	}
	return entry, ok
}

// Write stores value under key, stamped with the current time. Failures are
// logged and counted but never returned.
func (s *Slot[T]) Write(key string, value T) {
	entry := Entry[T]{Value: value, StoredAt: s.store.clock().UTC()}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("[WARN] cache: failed to encode %s/%s: %v", s.name, key, err)
		metrics.IncCacheWriteFailure(s.name)
		return
	}
	if err := s.store.backend.Save(s.name, key, data); err != nil {
		log.Printf("[WARN] cache: failed to persist %s/%s: %v", s.name, key, err)
		metrics.IncCacheWriteFailure(s.name)
	}
}

// load decodes a stored entry; anything undecodable reads as absent.
func (s *Slot[T]) load(key string) (Entry[T], bool) {
	var entry Entry[T]
	data, err := s.store.backend.Load(s.name, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[WARN] cache: failed to load %s/%s: %v", s.name, key, err)
		}
		metrics.IncCacheRead(s.name, "miss")
		return entry, false
	}

	var raw struct {
		Value    json.RawMessage `json:"value"`
		StoredAt time.Time       `json:"storedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw.StoredAt.IsZero() || len(raw.Value) == 0 {
		metrics.IncCacheRead(s.name, "corrupt")
		return Entry[T]{}, false
	}
	if err := json.Unmarshal(raw.Value, &entry.Value); err != nil {
		metrics.IncCacheRead(s.name, "corrupt")
		return Entry[T]{}, false
	}
	entry.StoredAt = raw.StoredAt
	return entry, true
}

// Keys lists the keys in this slot when the backend supports enumeration.
func (s *Slot[T]) Keys() ([]string, error) {
	lister, ok := s.store.backend.(Lister)
	if !ok {
		return nil, errors.New("cache backend cannot list keys")
	}
	return lister.Keys(s.name)
}
