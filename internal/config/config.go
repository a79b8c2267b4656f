package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string `env:"PORT" envDefault:"3000"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Domain      string `env:"DOMAIN"`

	// VisibilityThreshold is the minimum number of items a member must have
	// on their own wishlist before they may browse other members' lists.
	// A policy value, not an invariant.
	VisibilityThreshold int `env:"VISIBILITY_THRESHOLD" envDefault:"3"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.VisibilityThreshold < 0 {
		return nil, fmt.Errorf("VISIBILITY_THRESHOLD must not be negative")
	}
	return cfg, nil
}
