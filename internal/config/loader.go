package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if GPSCANON_CONFIG is set
//  3. env (prefix GPSCANON_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("GPSCANON_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: GPSCANON_ADDR, GPSCANON_DATABASE_URL, ...
	// Map env keys like GPSCANON_DATABASE_URL -> database_url (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("GPSCANON_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "gpscanon_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.MaxFileSizeBytes <= 0 {
		return nil, fmt.Errorf("%w: max_file_size_bytes must be positive", ErrInvalidConfig)
	}
	if cfg.MatchConfirmThreshold < 0 || cfg.MatchConfirmThreshold > 1 {
		return nil, fmt.Errorf("%w: match_confirm_threshold must be in [0,1]", ErrInvalidConfig)
	}
	return &cfg, nil
}
