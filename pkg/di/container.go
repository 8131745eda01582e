package di

import (
	"go.uber.org/zap"

	"github.com/storekit/datalayer/cache"
	"github.com/storekit/datalayer/datasource"
	"github.com/storekit/datalayer/internal/cacheinfra"
	"github.com/storekit/datalayer/repository"
	"github.com/storekit/datalayer/repositorycache"
)

// Config aggregates everything the container needs to build the data layer.
type Config struct {
	// Memory configures the local cache tier.
	Memory cacheinfra.MemoryConfig

	// Redis configures the shared cache tier. Nil runs L1-only, which is how
	// local development and most tests operate.
	Redis *cacheinfra.RedisConfig

	// Datasource configures the primary and replica pools.
	Datasource datasource.Config

	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// Container wires the cache tiers, the datasource router, and the key
// serializer into singletons, and provides the factory for cached
// repositories. Construction order matters: the router opens real pools, so
// it is built last and the tiers are torn down if it fails.
type Container struct {
	cacheService  *cache.MultiLevel
	keySerializer cache.KeySerializer
	router        *datasource.Router
	log           *zap.Logger
}

// NewContainer builds the full data layer from config.
func NewContainer(cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Memory == (cacheinfra.MemoryConfig{}) {
		cfg.Memory = cacheinfra.DefaultMemoryConfig()
	}
	memory, err := cacheinfra.NewMemory(cfg.Memory)
	if err != nil {
		return nil, err
	}

	var l2 cache.Tier
	if cfg.Redis != nil {
		redisTier, err := cacheinfra.NewRedisFromConfig(*cfg.Redis)
		if err != nil {
			memory.Close()
			return nil, err
		}
		l2 = redisTier
	}

	cacheService, err := cache.NewMultiLevel(memory, l2, cache.WithLogger(log))
	if err != nil {
		memory.Close()
		if l2 != nil {
			l2.Close()
		}
		return nil, err
	}

	router, err := datasource.NewRouter(cfg.Datasource, datasource.WithRouterLogger(log))
	if err != nil {
		memory.Close()
		if l2 != nil {
			l2.Close()
		}
		return nil, err
	}

	return &Container{
		cacheService:  cacheService,
		keySerializer: cache.NewDefaultKeySerializer(),
		router:        router,
		log:           log,
	}, nil
}

// NewMemoryCache builds an L1-only cache with default sizing. Convenience for
// demos and tests that want the cache port without a container.
func NewMemoryCache(log *zap.Logger) (*cache.MultiLevel, error) {
	memory, err := cacheinfra.NewMemory(cacheinfra.DefaultMemoryConfig())
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return cache.NewMultiLevel(memory, nil, cache.WithLogger(log))
}

// CacheService returns the singleton cache port.
func (c *Container) CacheService() cache.Cache {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Router returns the datasource router.
func (c *Container) Router() *datasource.Router {
	return c.router
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.log
}

// Close releases the cache tiers and the database pools.
func (c *Container) Close() error {
	err := c.cacheService.Close()
	if closeErr := c.router.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// NewCachedRepository builds the full decorator stack for one entity: a
// bun-backed repository, route interception, then caching. Methods cannot
// carry type parameters, so this is a package-level function:
//
//	repo, err := di.NewCachedRepository(container, store.ProductHandlers())
func NewCachedRepository[T any](c *Container, handlers repository.ModelHandlers[T], opts ...repositorycache.CachedOption[T]) (repository.Repository[T], error) {
	base, err := repository.NewBun[T](c.router, handlers)
	if err != nil {
		return nil, err
	}

	defaults := []repositorycache.CachedOption[T]{
		repositorycache.WithRecordID[T](handlers.GetID),
		repositorycache.WithCachedLogger[T](c.log),
	}
	return repositorycache.New[T](
		repository.NewRouting[T](base),
		c.cacheService,
		c.keySerializer,
		append(defaults, opts...)...,
	), nil
}
