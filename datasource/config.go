package datasource

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// PoolConfig describes one physical connection pool.
type PoolConfig struct {
	// URL is the connection string, e.g. postgres://host:5432/shop.
	URL string

	// Username and Password override credentials in the URL when set.
	Username string
	Password string

	// Driver is the database/sql driver name: "postgres" or "sqlite3".
	Driver string

	// PoolName labels the pool in logs.
	PoolName string

	// MaxOpenConns bounds the pool size. Zero leaves the driver default.
	MaxOpenConns int

	// MinIdleConns is the number of idle connections kept warm.
	MinIdleConns int

	// IdleTimeout retires connections idle longer than this.
	IdleTimeout time.Duration

	// ConnTimeout bounds establishing a new connection.
	ConnTimeout time.Duration

	// MaxLifetime retires connections older than this.
	MaxLifetime time.Duration
}

// Config describes the primary pool and the optional read replica pool. Any
// replica field left at its zero value inherits the primary's.
type Config struct {
	Primary PoolConfig
	Replica PoolConfig
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Primary.URL == "" {
		return errors.New("datasource: primary URL is required")
	}
	if c.Primary.Driver == "" {
		return errors.New("datasource: primary driver is required")
	}
	return nil
}

// withReplicaDefaults fills unset replica fields from the primary, so a
// deployment without a replica transparently routes everything to one pool.
func (c Config) withReplicaDefaults() Config {
	r := &c.Replica
	p := c.Primary
	if r.URL == "" {
		r.URL = p.URL
	}
	if r.Username == "" {
		r.Username = p.Username
	}
	if r.Password == "" {
		r.Password = p.Password
	}
	if r.Driver == "" {
		r.Driver = p.Driver
	}
	if r.PoolName == "" && p.PoolName != "" {
		r.PoolName = p.PoolName + "-replica"
	}
	if r.MaxOpenConns == 0 {
		r.MaxOpenConns = p.MaxOpenConns
	}
	if r.MinIdleConns == 0 {
		r.MinIdleConns = p.MinIdleConns
	}
	if r.IdleTimeout == 0 {
		r.IdleTimeout = p.IdleTimeout
	}
	if r.ConnTimeout == 0 {
		r.ConnTimeout = p.ConnTimeout
	}
	if r.MaxLifetime == 0 {
		r.MaxLifetime = p.MaxLifetime
	}
	return c
}

// dsn renders the connection string handed to database/sql, folding
// credentials and the connect timeout into the URL for drivers that take
// them there.
func (p PoolConfig) dsn() (string, error) {
	if p.Driver != "postgres" {
		return p.URL, nil
	}

	u, err := url.Parse(p.URL)
	if err != nil {
		return "", errors.Wrap(err, "datasource: parse pool URL")
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	q := u.Query()
	if p.ConnTimeout > 0 {
		seconds := int(p.ConnTimeout / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		q.Set("connect_timeout", strconv.Itoa(seconds))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ConfigFromEnv loads the datasource configuration from the environment,
// reading a .env file first when present. Recognized variables follow the
// DB_PRIMARY_* / DB_REPLICA_* naming:
//
//	DB_PRIMARY_URL, DB_PRIMARY_USER, DB_PRIMARY_PASSWORD, DB_PRIMARY_DRIVER,
//	DB_PRIMARY_POOL_NAME, DB_PRIMARY_MAX_OPEN, DB_PRIMARY_MIN_IDLE,
//	DB_PRIMARY_IDLE_TIMEOUT, DB_PRIMARY_CONN_TIMEOUT, DB_PRIMARY_MAX_LIFETIME
//
// Unset replica variables inherit the primary's values.
func ConfigFromEnv() (Config, error) {
	_ = godotenv.Load()

	primary, err := poolFromEnv("DB_PRIMARY")
	if err != nil {
		return Config{}, err
	}
	replica, err := poolFromEnv("DB_REPLICA")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Primary: primary, Replica: replica}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func poolFromEnv(prefix string) (PoolConfig, error) {
	p := PoolConfig{
		URL:      os.Getenv(prefix + "_URL"),
		Username: os.Getenv(prefix + "_USER"),
		Password: os.Getenv(prefix + "_PASSWORD"),
		Driver:   os.Getenv(prefix + "_DRIVER"),
		PoolName: os.Getenv(prefix + "_POOL_NAME"),
	}

	var err error
	if p.MaxOpenConns, err = envInt(prefix + "_MAX_OPEN"); err != nil {
		return p, err
	}
	if p.MinIdleConns, err = envInt(prefix + "_MIN_IDLE"); err != nil {
		return p, err
	}
	if p.IdleTimeout, err = envDuration(prefix + "_IDLE_TIMEOUT"); err != nil {
		return p, err
	}
	if p.ConnTimeout, err = envDuration(prefix + "_CONN_TIMEOUT"); err != nil {
		return p, err
	}
	if p.MaxLifetime, err = envDuration(prefix + "_MAX_LIFETIME"); err != nil {
		return p, err
	}
	return p, nil
}

func envInt(name string) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("datasource: parse %s", name))
	}
	return v, nil
}

func envDuration(name string) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrap(err, fmt.Sprintf("datasource: parse %s", name))
	}
	return v, nil
}
