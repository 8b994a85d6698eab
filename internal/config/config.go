// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres connection string. Empty selects the
	// in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// MaxFileSizeBytes caps uploaded vendor file size.
	MaxFileSizeBytes int64 `koanf:"max_file_size_bytes"`

	// MatchConfirmThreshold is the minimum confidence at which a player
	// name match is auto-confirmed.
	MatchConfirmThreshold float64 `koanf:"match_confirm_threshold"`

	// RecalcQueueSize bounds the in-memory recalculation queue.
	RecalcQueueSize int `koanf:"recalc_queue_size"`

	// RecalcWorkerCount sets the number of recalculation workers.
	RecalcWorkerCount int `koanf:"recalc_worker_count"`
}

// Default limits.
const (
	defaultMaxFileSize     = 10 * 1024 * 1024
	defaultConfirmMatch    = 0.80
	defaultRecalcQueueSize = 10_000
)

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		DatabaseURL:           "",
		MaxFileSizeBytes:      defaultMaxFileSize,
		MatchConfirmThreshold: defaultConfirmMatch,
		RecalcQueueSize:       defaultRecalcQueueSize,
		RecalcWorkerCount:     runtime.NumCPU(),
	}
	return c
}
