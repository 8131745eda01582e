package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultTTL is the entry lifetime used when Put is called with ttl <= 0.
const DefaultTTL = 30 * time.Minute

// Cache is the port every caller uses to talk to the caching layer. It hides
// how many tiers exist behind it; callers see a single key/value store with
// TTLs and glob-style bulk eviction.
//
// Implementations must degrade rather than fail: a backing tier being
// unreachable turns Get into a miss and Put/Evict into a best-effort no-op.
// Callers can always fall back to the uncached code path.
type Cache interface {
	// Get returns the raw cached value for key, or found=false on a miss.
	Get(ctx context.Context, key string) (found bool, val any, err error)

	// Put stores val under key in every configured tier. A ttl <= 0 uses
	// DefaultTTL.
	Put(ctx context.Context, key string, val any, ttl time.Duration) error

	// Evict removes key from every tier this instance can reach directly.
	Evict(ctx context.Context, key string) error

	// EvictPattern removes every key matching the glob pattern, where '*'
	// matches any substring. Matching semantics are identical across tiers.
	EvictPattern(ctx context.Context, pattern string) error

	// Exists reports whether any tier currently holds key. It does not
	// extend the entry's TTL.
	Exists(ctx context.Context, key string) bool

	// Clear empties every tier. Destructive; reserved for administrative use.
	Clear(ctx context.Context) error
}

// Tier is one cache level composed by MultiLevel. Get additionally reports the
// entry's remaining TTL so the coordinator can promote values between tiers
// without extending their lifetime past the authoritative record.
type Tier interface {
	Name() string
	Get(ctx context.Context, key string) (found bool, val any, remaining time.Duration, err error)
	Put(ctx context.Context, key string, val any, ttl time.Duration) error
	Evict(ctx context.Context, key string) error
	EvictPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// KeySerializer builds a cache key segment from a method name + arbitrary
// args. It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// Get retrieves a typed value from the cache.
// Values served from an in-process tier are returned by direct type
// assertion; values served from a serialized tier (Redis) arrive as []byte
// and are decoded with msgpack.
func Get[T any](ctx context.Context, c Cache, key string) (bool, T, error) {
	var zero T
	found, val, err := c.Get(ctx, key)
	if !found || err != nil {
		return false, zero, err
	}
	if typed, ok := val.(T); ok {
		return true, typed, nil
	}
	if data, ok := val.([]byte); ok {
		var result T
		if err := msgpack.Unmarshal(data, &result); err != nil {
			return false, zero, errors.Wrap(err, "cache: unmarshal value")
		}
		return true, result, nil
	}
	return false, zero, errors.Newf("cache: cannot convert value of type %T to %T", val, zero)
}
