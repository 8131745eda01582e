package cacheinfra

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/storekit/datalayer/cache"
)

// Memory is the in-process tier: a bounded ristretto cache with per-entry
// TTLs. Ristretto hashes keys internally and cannot enumerate them, so the
// tier keeps its own key index for glob eviction; the OnEvict hook keeps the
// index in sync when ristretto drops entries on its own.
type Memory struct {
	store  *ristretto.Cache
	keys   *xsync.MapOf[string, struct{}]
	maxTTL time.Duration
}

var _ cache.Tier = (*Memory)(nil)

// entry carries the original string key so OnEvict (which only sees hashed
// keys) can clean the index.
type entry struct {
	key string
	val any
}

// NewMemory builds the in-process tier from the given configuration.
func NewMemory(cfg MemoryConfig) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Memory{
		keys:   xsync.NewMapOf[string, struct{}](),
		maxTTL: cfg.MaxTTL,
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		// Ristretto wants ~10x counters per tracked entry for its admission
		// policy to be useful.
		NumCounters: cfg.Capacity * 10,
		MaxCost:     cfg.Capacity,
		BufferItems: 64,
		Cost:        func(any) int64 { return 1 },
		OnEvict: func(item *ristretto.Item) {
			if e, ok := item.Value.(entry); ok {
				m.keys.Delete(e.key)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	m.store = store
	return m, nil
}

// Name identifies the tier in logs.
func (m *Memory) Name() string { return "l1" }

// Get returns the cached value and its remaining TTL.
func (m *Memory) Get(_ context.Context, key string) (bool, any, time.Duration, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return false, nil, 0, nil
	}
	e, ok := val.(entry)
	if !ok {
		return false, nil, 0, nil
	}
	remaining, _ := m.store.GetTTL(key)
	return true, e.val, remaining, nil
}

// Put stores val for at most the tier's MaxTTL, whichever of ttl and the cap
// is shorter. The write is flushed before returning so an immediate Get on
// another goroutine observes it.
func (m *Memory) Put(_ context.Context, key string, val any, ttl time.Duration) error {
	if m.maxTTL > 0 && ttl > m.maxTTL {
		ttl = m.maxTTL
	}
	m.store.SetWithTTL(key, entry{key: key, val: val}, 1, ttl)
	m.store.Wait()
	m.keys.Store(key, struct{}{})
	return nil
}

// Evict removes key from the tier.
func (m *Memory) Evict(_ context.Context, key string) error {
	m.store.Del(key)
	m.keys.Delete(key)
	return nil
}

// EvictPattern removes every key matching the '*'-wildcard pattern, using the
// same matching semantics as the shared tier.
func (m *Memory) EvictPattern(ctx context.Context, pattern string) error {
	var matched []string
	m.keys.Range(func(key string, _ struct{}) bool {
		if cache.Match(pattern, key) {
			matched = append(matched, key)
		}
		return true
	})
	for _, key := range matched {
		if err := m.Evict(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether key is held without counting as an access.
func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.store.GetTTL(key)
	return ok, nil
}

// Clear empties the tier.
func (m *Memory) Clear(_ context.Context) error {
	m.store.Clear()
	m.keys.Clear()
	return nil
}

// Close releases the underlying cache.
func (m *Memory) Close() error {
	m.store.Close()
	return nil
}
