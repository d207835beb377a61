// Package refcache is a read-through, TTL-based cache for largely static
// reference data. Values live in two tiers: a process-memory map for hot
// reads and a badger database that survives restarts. Both tiers hold
// idempotent re-fetch results, so concurrent writers are last-write-wins
// and no cross-process invalidation exists.
package refcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const keyPrefix = "refcache:"

// DefaultTTL bounds staleness for reference data.
const DefaultTTL = 7 * 24 * time.Hour

type memEntry struct {
	data     []byte
	storedAt time.Time
}

// payload is the durable-tier envelope.
type payload struct {
	StoredAt time.Time       `json:"storedAt"`
	Value    json.RawMessage `json:"value"`
}

// Cache is safe for concurrent use.
type Cache struct {
	db  *badger.DB
	log zerolog.Logger

	mu  sync.Mutex
	mem map[string]memEntry

	now func() time.Time
}

func New(db *badger.DB, log zerolog.Logger) *Cache {
	return &Cache{
		db:  db,
		log: log.With().Str("component", "refcache").Logger(),
		mem: make(map[string]memEntry),
		now: time.Now,
	}
}

// Get returns the cached value for key if any tier holds one younger than
// maxAge, otherwise invokes fetch and stores the result in both tiers.
// A durable-tier write failure is logged and swallowed; the fetched value
// is still returned.
func Get[T any](ctx context.Context, c *Cache, key string, maxAge time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	entry, ok := c.mem[key]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.storedAt) < maxAge {
		var v T
		if err := json.Unmarshal(entry.data, &v); err == nil {
			return v, nil
		}
		// undecodable entries are treated as misses
		c.log.Warn().Str("key", key).Msg("dropping corrupt memory entry")
	}

	if data, storedAt, err := c.readDurable(key); err == nil && c.now().Sub(storedAt) < maxAge {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			c.mu.Lock()
			c.mem[key] = memEntry{data: data, storedAt: storedAt}
			c.mu.Unlock()
			return v, nil
		}
		c.log.Warn().Str("key", key).Msg("dropping corrupt durable entry")
	}

	v, err := fetch(ctx)
	if err != nil {
		return zero, err
	}
	if err := c.Set(key, v); err != nil {
		return zero, err
	}
	return v, nil
}

// Set writes through both tiers unconditionally.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	storedAt := c.now()

	c.mu.Lock()
	c.mem[key] = memEntry{data: data, storedAt: storedAt}
	c.mu.Unlock()

	if err := c.writeDurable(key, data, storedAt); err != nil {
		// quota or I/O trouble on the durable tier must not fail the caller
		c.log.Warn().Err(err).Str("key", key).Msg("durable tier write failed")
	}
	return nil
}

// Clear removes key from both tiers.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	delete(c.mem, key)
	c.mu.Unlock()

	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("durable tier delete failed")
	}
}

func (c *Cache) readDurable(key string) ([]byte, time.Time, error) {
	var p payload
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.log.Warn().Err(err).Str("key", key).Msg("durable tier read failed")
		}
		return nil, time.Time{}, err
	}
	return p.Value, p.StoredAt, nil
}

func (c *Cache) writeDurable(key string, data []byte, storedAt time.Time) error {
	raw, err := json.Marshal(payload{StoredAt: storedAt, Value: data})
	if err != nil {
		return fmt.Errorf("marshal cache payload: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), raw)
	})
}
