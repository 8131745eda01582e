package datasource

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	// Drivers the routing table knows how to open.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Router is the routing datasource: an immutable table mapping each Route to
// a connection pool constructed once at startup. At the moment a caller needs
// a database handle, DB consults the route carried by the context and hands
// back the matching pool.
//
// The router never masks pool errors: a connection timeout or an exhausted
// pool surfaces to the caller unchanged, since hiding a database outage
// behind this layer would be unsafe.
type Router struct {
	pools map[Route]*bun.DB
	names map[Route]string
	log   *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger used for route decisions.
func WithRouterLogger(log *zap.Logger) RouterOption {
	return func(r *Router) { r.log = log }
}

// NewRouter opens the primary and replica pools described by cfg and builds
// the routing table. Replica settings default to the primary's, so a
// replica-less deployment routes both values to the same physical pool
// without the callers noticing.
func NewRouter(cfg Config, opts ...RouterOption) (*Router, error) {
	cfg = cfg.withReplicaDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	primary, err := openPool(cfg.Primary)
	if err != nil {
		return nil, errors.Wrap(err, "datasource: open primary pool")
	}
	replica, err := openPool(cfg.Replica)
	if err != nil {
		_ = primary.Close()
		return nil, errors.Wrap(err, "datasource: open replica pool")
	}

	r := NewRouterFromPools(primary, replica, opts...)
	if cfg.Primary.PoolName != "" {
		r.names[RoutePrimary] = cfg.Primary.PoolName
	}
	if cfg.Replica.PoolName != "" {
		r.names[RouteReplica] = cfg.Replica.PoolName
	}
	return r, nil
}

// NewRouterFromPools builds the routing table from pre-constructed pool
// handles. Used when the caller owns pool construction, and by tests.
func NewRouterFromPools(primary, replica *bun.DB, opts ...RouterOption) *Router {
	if replica == nil {
		replica = primary
	}
	r := &Router{
		pools: map[Route]*bun.DB{
			RoutePrimary: primary,
			RouteReplica: replica,
		},
		names: map[Route]string{
			RoutePrimary: "primary",
			RouteReplica: "replica",
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DB returns the pool for the route carried by ctx. With no route
// established it returns the primary pool.
func (r *Router) DB(ctx context.Context) *bun.DB {
	route := RouteFromContext(ctx)
	r.log.Debug("routing datasource",
		zap.Stringer("route", route),
		zap.String("pool", r.names[route]))
	return r.pools[route]
}

// PoolName returns the configured label for the route's pool.
func (r *Router) PoolName(route Route) string {
	return r.names[route]
}

// Primary returns the writable pool regardless of context.
func (r *Router) Primary() *bun.DB {
	return r.pools[RoutePrimary]
}

// Replica returns the read pool regardless of context.
func (r *Router) Replica() *bun.DB {
	return r.pools[RouteReplica]
}

// Ping verifies both pools are reachable.
func (r *Router) Ping(ctx context.Context) error {
	if err := r.pools[RoutePrimary].PingContext(ctx); err != nil {
		return errors.Wrap(err, "datasource: ping primary")
	}
	if err := r.pools[RouteReplica].PingContext(ctx); err != nil {
		return errors.Wrap(err, "datasource: ping replica")
	}
	return nil
}

// Close closes every distinct pool in the table.
func (r *Router) Close() error {
	var firstErr error
	primary := r.pools[RoutePrimary]
	if err := primary.Close(); err != nil {
		firstErr = err
	}
	if replica := r.pools[RouteReplica]; replica != primary {
		if err := replica.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openPool(cfg PoolConfig) (*bun.DB, error) {
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MinIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MinIdleConns)
	}
	if cfg.IdleTimeout > 0 {
		sqldb.SetConnMaxIdleTime(cfg.IdleTimeout)
	}
	if cfg.MaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	switch cfg.Driver {
	case "postgres":
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case "sqlite3":
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		_ = sqldb.Close()
		return nil, errors.Newf("datasource: unsupported driver %q", cfg.Driver)
	}
}
