// file: internal/cache/pebble.go
// version: 1.0.0
// guid: 6cc94c94-560c-4bfb-ac8e-6154e4e1499b

package cache

import (
	"errors"
	"fmt"
	"log"

	"github.com/cockroachdb/pebble/v2"
)

// PebbleBackend stores cache payloads in an on-disk Pebble database.
//
// Key schema:
//
//	cache:<slot>:<key> -> JSON {"storedAt": ..., "value": ...}
type PebbleBackend struct {
	db *pebble.DB
}

// NewPebbleBackend opens (or creates) the database at path.
func NewPebbleBackend(path string) (*PebbleBackend, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	log.Printf("[INFO] Opened cache database at %s", path)
	return &PebbleBackend{db: db}, nil
}

func (p *PebbleBackend) Load(slot, key string) ([]byte, error) {
	value, closer, err := p.db.Get([]byte(storageKey(slot, key)))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (p *PebbleBackend) Save(slot, key string, data []byte) error {
	return p.db.Set([]byte(storageKey(slot, key)), data, pebble.Sync)
}

// Keys lists the keys stored in a slot, in byte order.
func (p *PebbleBackend) Keys(slot string) ([]string, error) {
	prefix := "cache:" + slot + ":"
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: []byte("cache:" + slot + ";"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()[len(prefix):]))
	}
	return keys, iter.Error()
}

func (p *PebbleBackend) Close() error {
	return p.db.Close()
}
