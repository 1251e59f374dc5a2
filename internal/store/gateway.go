// Package store is the persistence gateway: a scoped key-value store backed
// by BadgerDB holding the last session snapshot, the user preference blob,
// and the durable pending-action queue.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys. The whole pending queue lives under one key and is
// read-modify-written as a unit; that key is the transactional boundary.
const (
	keySnapshot    = "session/last"
	keyPreferences = "user/preferences"
	keyPending     = "sync/pending"
	keyAttention   = "sync/attention"
	keyLastSync    = "sync/last"
)

// Gateway wraps a Badger database with JSON-encoded values. Writes are
// serialized through a single mutex: Badger transactions are optimistic, and
// the queue's read-modify-write must never surface a conflict to callers.
type Gateway struct {
	mu sync.Mutex
	db *badger.DB
}

// Open creates or opens the store at dir.
func Open(dir string) (*Gateway, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &Gateway{db: db}, nil
}

// Close releases the underlying database.
func (g *Gateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}

// Get unmarshals the value at key into out. A missing key returns
// (false, nil): absence of data is the default state, not an error.
func (g *Gateway) Get(key string, out any) (bool, error) {
	found := false
	err := g.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return found, nil
}

// Set stores value at key as JSON.
func (g *Gateway) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	err = g.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is a no-op.
func (g *Gateway) Remove(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	err := g.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// updateList performs an atomic read-modify-write of the JSON list at key.
// The mutation runs inside one Badger transaction, so concurrent callers
// never observe or produce a lost update.
func updateList[T any](g *Gateway, key string, mutate func([]T) []T) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	err := g.db.Update(func(txn *badger.Txn) error {
		var current []T
		item, err := txn.Get([]byte(key))
		if err == nil {
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &current)
			}); err != nil {
				// A corrupt list is treated as empty rather than wedging
				// the queue forever.
				current = nil
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		next := mutate(current)
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", key, err)
	}
	return nil
}
