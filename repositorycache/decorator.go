package repositorycache

import (
	"context"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/storekit/datalayer/cache"
	"github.com/storekit/datalayer/repository"
)

// listResult wraps the tuple result from List operations for caching.
type listResult[T any] struct {
	Records []T `msgpack:"records"`
	Total   int `msgpack:"total"`
}

// Cached decorates a base repository with read-through caching against the
// cache port. Every key is prefixed with the entity namespace
// ("product:get_by_id:…"), so writes invalidate with glob patterns instead of
// tracking individual keys: the shared tier applies the same pattern to its
// own key space, covering entries written by other instances.
//
// Cache failures never affect the outcome of an operation: a broken cache
// degrades the decorator to a pass-through.
type Cached[T any] struct {
	base      repository.Repository[T]
	cache     cache.Cache
	keys      cache.KeySerializer
	renderer  repository.CriteriaRenderer
	namespace string
	ttl       time.Duration
	recordID  func(T) string
	log       *zap.Logger
}

var _ repository.Repository[*struct{}] = (*Cached[*struct{}])(nil)

// CachedOption configures a Cached decorator.
type CachedOption[T any] func(*Cached[T])

// WithNamespace overrides the entity namespace derived from T's type name.
func WithNamespace[T any](ns string) CachedOption[T] {
	return func(c *Cached[T]) { c.namespace = ns }
}

// WithTTL sets the entry lifetime for this repository's cached reads.
// Zero defers to the cache port's default.
func WithTTL[T any](ttl time.Duration) CachedOption[T] {
	return func(c *Cached[T]) { c.ttl = ttl }
}

// WithRecordID supplies an identifier extractor, enabling targeted
// invalidation of get_by_id entries after Update and Delete. Without it,
// writes invalidate the whole entity namespace.
func WithRecordID[T any](fn func(T) string) CachedOption[T] {
	return func(c *Cached[T]) { c.recordID = fn }
}

// WithCachedLogger sets the logger for invalidation tracing.
func WithCachedLogger[T any](log *zap.Logger) CachedOption[T] {
	return func(c *Cached[T]) { c.log = log }
}

// New creates a Cached repository wrapping base.
func New[T any](base repository.Repository[T], cacheService cache.Cache, keys cache.KeySerializer, opts ...CachedOption[T]) *Cached[T] {
	c := &Cached[T]{
		base:      base,
		cache:     cacheService,
		keys:      keys,
		namespace: namespaceFor[T](),
		log:       zap.NewNop(),
	}
	if renderer, ok := base.(repository.CriteriaRenderer); ok {
		c.renderer = renderer
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// namespaceFor derives the entity namespace from T's type name.
func namespaceFor[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return toSnake(t.Name())
}

func (c *Cached[T]) key(method string, args ...any) string {
	return c.namespace + cache.KeySeparator + c.keys.SerializeKey(method, args...)
}

// criteriaArg turns a criteria set into a key argument identifying the
// logical query by value. Criteria are closures, so the only trustworthy
// identity is the SQL they render to; when the base repository can render
// them, the SQL text is the key segment. The serializer's address-based
// fallback remains only for opaque bases that cannot render, where a
// collision-prone key is still better than no caching contract at all.
func (c *Cached[T]) criteriaArg(criteria []repository.SelectCriteria) any {
	if len(criteria) == 0 {
		return nil
	}
	if c.renderer != nil {
		if sqlText, ok := c.renderer.RenderCriteria(criteria...); ok {
			return sqlText
		}
	}
	return criteria
}

// getOrFetch is the read-through path shared by all cached reads.
func getOrFetch[T, R any](ctx context.Context, c *Cached[T], key string, fetch func(context.Context) (R, error)) (R, error) {
	found, cached, err := cache.Get[R](ctx, c.cache, key)
	if err != nil {
		c.log.Debug("cache read failed, falling through", zap.String("key", key), zap.Error(err))
	}
	if found && err == nil {
		return cached, nil
	}

	result, err := fetch(ctx)
	if err != nil {
		var zero R
		return zero, err
	}

	// Swallow put errors: the caller has their value.
	_ = c.cache.Put(ctx, key, result, c.ttl)
	return result, nil
}

// Get retrieves a single record matching the criteria, with caching.
func (c *Cached[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	key := c.key("get", c.criteriaArg(criteria))
	return getOrFetch(ctx, c, key, func(ctx context.Context) (T, error) {
		return c.base.Get(ctx, criteria...)
	})
}

// GetByID retrieves a record by ID, with caching.
func (c *Cached[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	key := c.key("get_by_id", id, c.criteriaArg(criteria))
	return getOrFetch(ctx, c, key, func(ctx context.Context) (T, error) {
		return c.base.GetByID(ctx, id, criteria...)
	})
}

// List retrieves records and their pre-pagination total, with caching. The
// records and the total are cached as one unit.
func (c *Cached[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	key := c.key("list", c.criteriaArg(criteria))
	res, err := getOrFetch(ctx, c, key, func(ctx context.Context) (listResult[T], error) {
		records, total, err := c.base.List(ctx, criteria...)
		return listResult[T]{Records: records, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Total, nil
}

// Count returns the number of matching records, with caching.
func (c *Cached[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	key := c.key("count", c.criteriaArg(criteria))
	return getOrFetch(ctx, c, key, func(ctx context.Context) (int, error) {
		return c.base.Count(ctx, criteria...)
	})
}

// Create inserts through the base repository, then invalidates the query
// caches whose results the new record changes.
func (c *Cached[T]) Create(ctx context.Context, record T) (T, error) {
	result, err := c.base.Create(ctx, record)
	if err == nil {
		c.evictPattern(ctx, c.namespace+":list*")
		c.evictPattern(ctx, c.namespace+":count*")
		c.evictPattern(ctx, c.namespace+":get:*")
	}
	return result, err
}

// Update updates through the base repository, then invalidates.
func (c *Cached[T]) Update(ctx context.Context, record T) (T, error) {
	result, err := c.base.Update(ctx, record)
	if err == nil {
		c.invalidateRecord(ctx, record)
	}
	return result, err
}

// Delete deletes through the base repository, then invalidates.
func (c *Cached[T]) Delete(ctx context.Context, record T) error {
	err := c.base.Delete(ctx, record)
	if err == nil {
		c.invalidateRecord(ctx, record)
	}
	return err
}

// invalidateRecord drops the record's own entries plus every query cache its
// mutation may have changed. Without an identifier extractor the whole
// namespace goes.
func (c *Cached[T]) invalidateRecord(ctx context.Context, record T) {
	if c.recordID == nil {
		c.evictPattern(ctx, c.namespace+":*")
		return
	}
	c.evictPattern(ctx, c.namespace+":get_by_id:"+c.recordID(record)+"*")
	c.evictPattern(ctx, c.namespace+":get:*")
	c.evictPattern(ctx, c.namespace+":list*")
	c.evictPattern(ctx, c.namespace+":count*")
}

func (c *Cached[T]) evictPattern(ctx context.Context, pattern string) {
	c.log.Debug("cache invalidate", zap.String("pattern", pattern))
	// The port already degrades cache failures to no-ops.
	_ = c.cache.EvictPattern(ctx, pattern)
}
