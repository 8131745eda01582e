package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	err := Config{}.Validate()
	require.Error(t, err)

	err = Config{Primary: PoolConfig{URL: "postgres://db/shop"}}.Validate()
	require.Error(t, err, "driver is required")

	err = Config{Primary: PoolConfig{URL: "postgres://db/shop", Driver: "postgres"}}.Validate()
	require.NoError(t, err)
}

func TestConfig_ReplicaInheritsPrimary(t *testing.T) {
	cfg := Config{
		Primary: PoolConfig{
			URL:          "postgres://db:5432/shop",
			Username:     "app",
			Password:     "secret",
			Driver:       "postgres",
			PoolName:     "shop",
			MaxOpenConns: 20,
			MinIdleConns: 5,
			IdleTimeout:  time.Minute,
			ConnTimeout:  3 * time.Second,
			MaxLifetime:  time.Hour,
		},
	}.withReplicaDefaults()

	r := cfg.Replica
	assert.Equal(t, cfg.Primary.URL, r.URL)
	assert.Equal(t, "app", r.Username)
	assert.Equal(t, "secret", r.Password)
	assert.Equal(t, "postgres", r.Driver)
	assert.Equal(t, "shop-replica", r.PoolName)
	assert.Equal(t, 20, r.MaxOpenConns)
	assert.Equal(t, 5, r.MinIdleConns)
	assert.Equal(t, time.Minute, r.IdleTimeout)
	assert.Equal(t, 3*time.Second, r.ConnTimeout)
	assert.Equal(t, time.Hour, r.MaxLifetime)
}

func TestConfig_ReplicaOverridesStick(t *testing.T) {
	cfg := Config{
		Primary: PoolConfig{URL: "postgres://primary/shop", Driver: "postgres", MaxOpenConns: 20},
		Replica: PoolConfig{URL: "postgres://replica/shop", MaxOpenConns: 50},
	}.withReplicaDefaults()

	assert.Equal(t, "postgres://replica/shop", cfg.Replica.URL)
	assert.Equal(t, 50, cfg.Replica.MaxOpenConns)
	assert.Equal(t, "postgres", cfg.Replica.Driver)
}

func TestPoolConfig_DSN(t *testing.T) {
	t.Run("postgres folds credentials and connect timeout", func(t *testing.T) {
		p := PoolConfig{
			URL:         "postgres://db:5432/shop?sslmode=disable",
			Username:    "app",
			Password:    "secret",
			Driver:      "postgres",
			ConnTimeout: 3 * time.Second,
		}
		dsn, err := p.dsn()
		require.NoError(t, err)
		assert.Contains(t, dsn, "app:secret@db:5432")
		assert.Contains(t, dsn, "connect_timeout=3")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("sub-second timeout rounds up to one second", func(t *testing.T) {
		p := PoolConfig{
			URL:         "postgres://db/shop",
			Driver:      "postgres",
			ConnTimeout: 100 * time.Millisecond,
		}
		dsn, err := p.dsn()
		require.NoError(t, err)
		assert.Contains(t, dsn, "connect_timeout=1")
	})

	t.Run("non-postgres passes through untouched", func(t *testing.T) {
		p := PoolConfig{URL: "file:shop.db?cache=shared", Driver: "sqlite3", ConnTimeout: time.Second}
		dsn, err := p.dsn()
		require.NoError(t, err)
		assert.Equal(t, "file:shop.db?cache=shared", dsn)
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DB_PRIMARY_URL", "postgres://db:5432/shop")
	t.Setenv("DB_PRIMARY_DRIVER", "postgres")
	t.Setenv("DB_PRIMARY_USER", "app")
	t.Setenv("DB_PRIMARY_MAX_OPEN", "25")
	t.Setenv("DB_PRIMARY_IDLE_TIMEOUT", "90s")
	t.Setenv("DB_REPLICA_URL", "postgres://replica:5432/shop")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres://db:5432/shop", cfg.Primary.URL)
	assert.Equal(t, "app", cfg.Primary.Username)
	assert.Equal(t, 25, cfg.Primary.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.Primary.IdleTimeout)
	assert.Equal(t, "postgres://replica:5432/shop", cfg.Replica.URL)
}

func TestConfigFromEnv_BadNumber(t *testing.T) {
	t.Setenv("DB_PRIMARY_URL", "postgres://db:5432/shop")
	t.Setenv("DB_PRIMARY_DRIVER", "postgres")
	t.Setenv("DB_PRIMARY_MAX_OPEN", "not-a-number")

	_, err := ConfigFromEnv()
	require.Error(t, err)
}
