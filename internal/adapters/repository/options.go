package repository

import "time"

// Option applies a configuration option to the Postgres store.
type Option func(*pgConfig)

type pgConfig struct {
	maxConns       int32
	connectTimeout time.Duration
}

// WithMaxConns caps the connection pool size.
func WithMaxConns(n int32) Option {
	return func(c *pgConfig) {
		if n > 0 {
			c.maxConns = n
		}
	}
}

// WithConnectTimeout bounds the initial connection attempt.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *pgConfig) {
		if d > 0 {
			c.connectTimeout = d
		}
	}
}
