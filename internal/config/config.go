// Package config loads runtime settings from the environment.
//
// Both binaries read the same variables; the CLI lets flags override them.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration.
type Config struct {
	// Storage
	DBPath          string `env:"DB_PATH"          envDefault:"./mtgssm.db"`
	CatalogPath     string `env:"CATALOG_PATH"     envDefault:"./data/default-cards.json"`
	SetAliasesPath  string `env:"SET_ALIASES_PATH"` // Empty uses the built-in table
	ScryfallBaseURL string `env:"SCRYFALL_BASE_URL" envDefault:"https://api.scryfall.com"`

	// HTTP server
	Port               string   `env:"PORT"                 envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	ResolveCacheSize   int      `env:"RESOLVE_CACHE_SIZE"   envDefault:"1024"`

	// Import
	ImportWorkers int  `env:"IMPORT_WORKERS" envDefault:"4"`
	ImportLenient bool `env:"IMPORT_LENIENT" envDefault:"false"`
}

// Load parses environment variables into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parse correctly but make no sense.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: DB_PATH must not be empty")
	}
	if c.CatalogPath == "" {
		return fmt.Errorf("config: CATALOG_PATH must not be empty")
	}
	if c.ImportWorkers < 1 {
		return fmt.Errorf("config: IMPORT_WORKERS must be at least 1, got %d", c.ImportWorkers)
	}
	if c.ResolveCacheSize < 1 {
		return fmt.Errorf("config: RESOLVE_CACHE_SIZE must be at least 1, got %d", c.ResolveCacheSize)
	}
	return nil
}
