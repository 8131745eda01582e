package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// MultiLevel composes a local tier (L1) and a shared tier (L2) behind the
// Cache port.
//
// Reads go L1 -> L2 -> miss. An L2 hit is promoted into L1 with the remaining
// TTL of the L2 entry, so no tier ever outlives the authoritative record.
// Writes are write-through: the shared tier first, then the local tier, so L1
// is never populated with a value the rest of the fleet cannot see in L2.
//
// Any single tier failing degrades that tier to a miss (reads) or a no-op
// (writes); the error is logged and never reaches the caller.
type MultiLevel struct {
	l1  Tier
	l2  Tier
	log *zap.Logger
	ttl time.Duration
}

var _ Cache = (*MultiLevel)(nil)

// Option configures a MultiLevel coordinator.
type Option func(*MultiLevel)

// WithLogger sets the logger used for tier failures and cache tracing.
func WithLogger(log *zap.Logger) Option {
	return func(m *MultiLevel) { m.log = log }
}

// WithDefaultTTL overrides the TTL applied when Put is called with ttl <= 0.
func WithDefaultTTL(d time.Duration) Option {
	return func(m *MultiLevel) { m.ttl = d }
}

// NewMultiLevel builds a coordinator over the given tiers. Either tier may be
// nil for single-tier deployments, but at least one must be configured.
func NewMultiLevel(l1, l2 Tier, opts ...Option) (*MultiLevel, error) {
	if l1 == nil && l2 == nil {
		return nil, errors.New("cache: multilevel requires at least one tier")
	}
	m := &MultiLevel{
		l1:  l1,
		l2:  l2,
		log: zap.NewNop(),
		ttl: DefaultTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get checks L1 first, then L2. An L2 hit populates L1 with the entry's
// remaining TTL before returning.
func (m *MultiLevel) Get(ctx context.Context, key string) (bool, any, error) {
	if m.l1 != nil {
		found, val, _, err := m.l1.Get(ctx, key)
		switch {
		case err != nil:
			m.tierError("get", m.l1, key, err)
		case found:
			m.log.Debug("cache hit", zap.String("tier", m.l1.Name()), zap.String("key", key))
			return true, val, nil
		}
	}

	if m.l2 != nil {
		found, val, remaining, err := m.l2.Get(ctx, key)
		switch {
		case err != nil:
			m.tierError("get", m.l2, key, err)
		case found:
			m.log.Debug("cache hit", zap.String("tier", m.l2.Name()), zap.String("key", key))
			if m.l1 != nil && remaining > 0 {
				if err := m.l1.Put(ctx, key, val, remaining); err != nil {
					m.tierError("promote", m.l1, key, err)
				}
			}
			return true, val, nil
		}
	}

	m.log.Debug("cache miss", zap.String("key", key))
	return false, nil, nil
}

// Put writes through to every configured tier, shared tier first. Tier write
// failures are logged and do not block the remaining tier.
func (m *MultiLevel) Put(ctx context.Context, key string, val any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.log.Debug("cache put", zap.String("key", key), zap.Duration("ttl", ttl))

	if m.l2 != nil {
		if err := m.l2.Put(ctx, key, val, ttl); err != nil {
			m.tierError("put", m.l2, key, err)
		}
	}
	if m.l1 != nil {
		if err := m.l1.Put(ctx, key, val, ttl); err != nil {
			m.tierError("put", m.l1, key, err)
		}
	}
	return nil
}

// Evict removes key from every tier this instance reaches directly. The local
// tiers of other instances are not reachable from here: their copies live
// until their own TTL expires.
func (m *MultiLevel) Evict(ctx context.Context, key string) error {
	m.log.Debug("cache evict", zap.String("key", key))
	for _, tier := range m.tiers() {
		if err := tier.Evict(ctx, key); err != nil {
			m.tierError("evict", tier, key, err)
		}
	}
	return nil
}

// EvictPattern removes every key matching the '*'-wildcard pattern from every
// tier, each tier applying the same matching semantics against its own keys.
func (m *MultiLevel) EvictPattern(ctx context.Context, pattern string) error {
	m.log.Debug("cache evict pattern", zap.String("pattern", pattern))
	for _, tier := range m.tiers() {
		if err := tier.EvictPattern(ctx, pattern); err != nil {
			m.tierError("evict pattern", tier, pattern, err)
		}
	}
	return nil
}

// Exists reports whether any tier holds key, without extending its TTL.
func (m *MultiLevel) Exists(ctx context.Context, key string) bool {
	for _, tier := range m.tiers() {
		found, err := tier.Exists(ctx, key)
		if err != nil {
			m.tierError("exists", tier, key, err)
			continue
		}
		if found {
			return true
		}
	}
	return false
}

// Clear empties every tier. Logged at warning level given its severity.
func (m *MultiLevel) Clear(ctx context.Context) error {
	m.log.Warn("cache clear: emptying all tiers")
	for _, tier := range m.tiers() {
		if err := tier.Clear(ctx); err != nil {
			m.tierError("clear", tier, "", err)
		}
	}
	return nil
}

// Close shuts down the configured tiers.
func (m *MultiLevel) Close() error {
	var firstErr error
	for _, tier := range m.tiers() {
		if err := tier.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiLevel) tiers() []Tier {
	tiers := make([]Tier, 0, 2)
	if m.l1 != nil {
		tiers = append(tiers, m.l1)
	}
	if m.l2 != nil {
		tiers = append(tiers, m.l2)
	}
	return tiers
}

func (m *MultiLevel) tierError(op string, tier Tier, key string, err error) {
	m.log.Error("cache tier failure",
		zap.String("op", op),
		zap.String("tier", tier.Name()),
		zap.String("key", key),
		zap.Error(err),
	)
}
