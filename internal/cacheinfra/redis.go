package cacheinfra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/storekit/datalayer/cache"
)

// Redis is the shared tier: a networked TTL store reachable by every
// application instance. Values are msgpack-encoded and come back as []byte;
// cache.Get decodes them at the call site.
//
// Every network call runs under a bounded timeout. A call exceeding it is a
// tier failure the coordinator degrades on, never an unbounded stall.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

var _ cache.Tier = (*Redis)(nil)

// NewRedis builds the shared tier on top of the given client. The caller owns
// the client lifecycle unless it was created through NewRedisFromConfig.
func NewRedis(client redis.UniversalClient, cfg RedisConfig) *Redis {
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Redis{
		client:  client,
		prefix:  cfg.Prefix,
		timeout: timeout,
	}
}

// NewRedisFromConfig dials the server described by cfg and builds the tier.
func NewRedisFromConfig(cfg RedisConfig) (*Redis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedis(client, cfg), nil
}

// Name identifies the tier in logs.
func (r *Redis) Name() string { return "l2" }

func (r *Redis) opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, r.timeout)
}

func (r *Redis) prefixed(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

// Get returns the raw encoded value and the entry's remaining TTL.
func (r *Redis) Get(ctx context.Context, key string) (bool, any, time.Duration, error) {
	qctx, cancel := r.opCtx(ctx)
	defer cancel()

	k := r.prefixed(key)
	pipe := r.client.Pipeline()
	getCmd := pipe.Get(qctx, k)
	ttlCmd := pipe.TTL(qctx, k)
	if _, err := pipe.Exec(qctx); err != nil && err != redis.Nil {
		return false, nil, 0, err
	}

	data, err := getCmd.Bytes()
	if err == redis.Nil {
		return false, nil, 0, nil
	}
	if err != nil {
		return false, nil, 0, err
	}

	remaining := ttlCmd.Val()
	if remaining < 0 {
		remaining = 0
	}
	return true, data, remaining, nil
}

// Put stores the msgpack encoding of val under key with the given TTL.
func (r *Redis) Put(ctx context.Context, key string, val any, ttl time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return err
	}

	qctx, cancel := r.opCtx(ctx)
	defer cancel()
	return r.client.Set(qctx, r.prefixed(key), data, ttl).Err()
}

// Evict removes key from the tier.
func (r *Redis) Evict(ctx context.Context, key string) error {
	qctx, cancel := r.opCtx(ctx)
	defer cancel()
	return r.client.Del(qctx, r.prefixed(key)).Err()
}

// EvictPattern removes every key matching the '*'-wildcard pattern. The scan
// runs against the tier's own namespace; MATCH applies the same glob
// semantics cache.Match implements locally.
func (r *Redis) EvictPattern(ctx context.Context, pattern string) error {
	return r.deleteMatching(ctx, r.prefixed(pattern))
}

// Exists reports whether key is held. EXISTS does not touch the TTL.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	qctx, cancel := r.opCtx(ctx)
	defer cancel()
	n, err := r.client.Exists(qctx, r.prefixed(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes every key in the tier's namespace.
func (r *Redis) Clear(ctx context.Context) error {
	return r.deleteMatching(ctx, r.prefixed("*"))
}

func (r *Redis) deleteMatching(ctx context.Context, match string) error {
	qctx, cancel := r.opCtx(ctx)
	defer cancel()

	var keys []string
	iter := r.client.Scan(qctx, 0, match, 100).Iterator()
	for iter.Next(qctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(qctx, keys...).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
