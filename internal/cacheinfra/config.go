package cacheinfra

import "time"

// MemoryConfig holds the settings for the in-process tier.
type MemoryConfig struct {
	// Capacity is the maximum number of entries the tier can hold. Must be
	// greater than 0.
	Capacity int64

	// MaxTTL caps the lifetime of any entry stored in this tier, including
	// entries promoted from the shared tier. Zero disables the cap.
	MaxTTL time.Duration
}

// DefaultMemoryConfig returns a MemoryConfig with sensible defaults: room for
// 10k entries, each living at most 5 minutes.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity: 10000,
		MaxTTL:   5 * time.Minute,
	}
}

// Validate checks whether the configuration values are valid.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.MaxTTL < 0 {
		return &ConfigError{Field: "MaxTTL", Message: "must be non-negative"}
	}
	return nil
}

// RedisConfig holds the settings for the shared tier.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password authenticates against the server. Empty means no auth.
	Password string

	// DB selects the Redis logical database.
	DB int

	// Prefix namespaces every key this tier writes. Clear only touches keys
	// under the prefix.
	Prefix string

	// QueryTimeout bounds every network call. A call exceeding it counts as
	// a tier failure, not a stall. Zero uses DefaultQueryTimeout.
	QueryTimeout time.Duration
}

// DefaultQueryTimeout bounds shared-tier network calls when RedisConfig does
// not set one.
const DefaultQueryTimeout = 5 * time.Second

// Validate checks whether the configuration values are valid.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "is required"}
	}
	if c.QueryTimeout < 0 {
		return &ConfigError{Field: "QueryTimeout", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
