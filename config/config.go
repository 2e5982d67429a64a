// Package config loads server configuration from flags and environment
// variables. Environment variables win over flags, so deployments can
// override whatever defaults ship in the unit file.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config carries everything cmd/server needs to start.
type Config struct {
	Addr           string   `env:"RUN_ADDRESS"`
	DatabasePath   string   `env:"DATABASE_PATH"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	SeedPrices     bool     `env:"SEED_PRICES"`
}

// Parse reads flags, then applies environment overrides.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "a", ":8080", "address to listen on")
	fs.StringVar(&cfg.DatabasePath, "d", "./data/arena.db", "sqlite database path")
	fs.BoolVar(&cfg.SeedPrices, "seed", true, "seed default slot prices when the pricing table is empty")
	origins := fs.String("origins", "http://localhost:3000", "comma-separated allowed CORS origins")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.AllowedOrigins = splitNonEmpty(*origins)

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
