package redis

import "time"

// Config holds the wallet store's Redis settings
type Config struct {
	// URL is a redis:// or rediss:// connection URL
	URL string

	// KeyPrefix namespaces wallet keys so several deployments can share a database
	KeyPrefix string

	// PingTimeout bounds the connectivity check made by New
	PingTimeout time.Duration

	PoolSize     int
	MinIdleConns int
}

// DefaultConfig returns the settings used when only REDIS_URL is given
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		KeyPrefix:    "partyroom",
		PingTimeout:  5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}
