package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// openSQLite opens a named shared-cache in-memory database. The single
// connection keeps every query on the same underlying memory store.
func openSQLite(t *testing.T, name string) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

// markPool stamps the database so tests can tell which pool served a query.
func markPool(t *testing.T, db *bun.DB, label string) {
	t.Helper()
	ctx := context.Background()
	_, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS pool_marker (label TEXT NOT NULL)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO pool_marker (label) VALUES (?)", label)
	require.NoError(t, err)
}

func poolLabel(t *testing.T, db *bun.DB) string {
	t.Helper()
	var label string
	err := db.QueryRowContext(context.Background(), "SELECT label FROM pool_marker").Scan(&label)
	require.NoError(t, err)
	return label
}

func TestRouter_DBSelectsByRoute(t *testing.T) {
	primary := openSQLite(t, "router_primary")
	replica := openSQLite(t, "router_replica")
	markPool(t, primary, "primary")
	markPool(t, replica, "replica")

	router := NewRouterFromPools(primary, replica)

	ctx := context.Background()
	assert.Equal(t, "primary", poolLabel(t, router.DB(ctx)), "no route defaults to primary")
	assert.Equal(t, "primary", poolLabel(t, router.DB(WithRoute(ctx, RoutePrimary))))
	assert.Equal(t, "replica", poolLabel(t, router.DB(WithRoute(ctx, RouteReplica))))
}

func TestRouter_RouteDoesNotLeakAcrossCalls(t *testing.T) {
	primary := openSQLite(t, "router_leak_primary")
	replica := openSQLite(t, "router_leak_replica")
	markPool(t, primary, "primary")
	markPool(t, replica, "replica")

	router := NewRouterFromPools(primary, replica)

	ctx := context.Background()
	replicaCtx := WithRoute(ctx, RouteReplica)
	assert.Equal(t, "replica", poolLabel(t, router.DB(replicaCtx)))

	// The original context never saw the route.
	assert.Equal(t, "primary", poolLabel(t, router.DB(ctx)))
}

func TestRouter_NilReplicaFallsBackToPrimary(t *testing.T) {
	primary := openSQLite(t, "router_single")
	markPool(t, primary, "primary")

	router := NewRouterFromPools(primary, nil)

	assert.Same(t, router.Primary(), router.Replica())
	assert.Equal(t, "primary", poolLabel(t, router.DB(WithRoute(context.Background(), RouteReplica))))
}

func TestNewRouter_OpensPoolsFromConfig(t *testing.T) {
	cfg := Config{
		Primary: PoolConfig{
			URL:          "file:router_cfg_primary?mode=memory&cache=shared",
			Driver:       "sqlite3",
			PoolName:     "shop",
			MaxOpenConns: 1,
		},
		Replica: PoolConfig{
			URL: "file:router_cfg_replica?mode=memory&cache=shared",
		},
	}

	router, err := NewRouter(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { router.Close() })

	require.NoError(t, router.Ping(context.Background()))
	assert.NotSame(t, router.Primary(), router.Replica())
}

// TestRouter_DBLogsPoolName checks each route decision names the pool that
// served it, with configured labels taking over from the defaults.
func TestRouter_DBLogsPoolName(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	cfg := Config{
		Primary: PoolConfig{
			URL:          "file:router_log_primary?mode=memory&cache=shared",
			Driver:       "sqlite3",
			PoolName:     "shop",
			MaxOpenConns: 1,
		},
	}
	router, err := NewRouter(cfg, WithRouterLogger(zap.New(core)))
	require.NoError(t, err)
	t.Cleanup(func() { router.Close() })

	assert.Equal(t, "shop", router.PoolName(RoutePrimary))
	assert.Equal(t, "shop-replica", router.PoolName(RouteReplica))

	ctx := context.Background()
	router.DB(ctx)
	router.DB(WithRoute(ctx, RouteReplica))

	entries := logs.FilterMessage("routing datasource").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "shop", entries[0].ContextMap()["pool"])
	assert.Equal(t, "shop-replica", entries[1].ContextMap()["pool"])
}

func TestRouter_PoolNameDefaults(t *testing.T) {
	primary := openSQLite(t, "router_name_defaults")
	router := NewRouterFromPools(primary, nil)

	assert.Equal(t, "primary", router.PoolName(RoutePrimary))
	assert.Equal(t, "replica", router.PoolName(RouteReplica))
}

func TestNewRouter_RejectsBadConfig(t *testing.T) {
	_, err := NewRouter(Config{})
	require.Error(t, err)

	_, err = NewRouter(Config{Primary: PoolConfig{URL: "file:x", Driver: "oracle"}})
	require.Error(t, err)
}
