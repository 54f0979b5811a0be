// Package config defines service configuration and its loading from YAML
// files and RANKD_* environment variables.
package config

import (
	"fmt"

	"github.com/meur/tierrank/internal/ranking"
)

// Config contains process configuration shared by rankd, tierctl and seed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// MaxNameLength bounds tier and item names, in runes.
	MaxNameLength int `koanf:"max_name_length"`

	// StaticDir, when set, is served at / for a built frontend.
	StaticDir string `koanf:"static_dir"`

	Tiers   TiersConfig   `koanf:"tiers"`
	Reorder ReorderConfig `koanf:"reorder"`
	CORS    CORSConfig    `koanf:"cors"`
}

// TiersConfig holds tier lifecycle policies.
type TiersConfig struct {
	// DeletePolicy is "reject" or "detach".
	DeletePolicy ranking.DeletePolicy `koanf:"delete_policy"`
}

// ReorderConfig holds bulk reorder policies.
type ReorderConfig struct {
	// OmittedItems is "reject" or "append_unassigned".
	OmittedItems ranking.OmittedPolicy `koanf:"omitted_items"`
}

// CORSConfig configures the HTTP CORS handler.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":8080",
		DBPath:        "./tierrank.db",
		MaxNameLength: ranking.DefaultMaxNameLength,
		Tiers: TiersConfig{
			DeletePolicy: ranking.DeleteReject,
		},
		Reorder: ReorderConfig{
			OmittedItems: ranking.OmitReject,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	if c.MaxNameLength <= 0 {
		return fmt.Errorf("%w: max_name_length must be positive, got %d", ErrInvalidConfig, c.MaxNameLength)
	}
	if !c.Tiers.DeletePolicy.Valid() {
		return fmt.Errorf("%w: tiers.delete_policy %q", ErrInvalidConfig, c.Tiers.DeletePolicy)
	}
	if !c.Reorder.OmittedItems.Valid() {
		return fmt.Errorf("%w: reorder.omitted_items %q", ErrInvalidConfig, c.Reorder.OmittedItems)
	}
	return nil
}
