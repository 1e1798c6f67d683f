// ABOUTME: Configuration loader for the newsterm client
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all client settings. Values come from environment variables;
// a .env file in the working directory is loaded first if present.
type Config struct {
	// APIURL is the base address of the news aggregation backend.
	APIURL string `env:"NEWSTERM_API_URL" envDefault:"http://localhost:8000"`

	// RequestTimeout bounds every backend call.
	RequestTimeout time.Duration `env:"NEWSTERM_TIMEOUT" envDefault:"30s"`

	// ConfigDir overrides where tokens and logs are kept.
	// Empty means the XDG default (~/.config/newsterm).
	ConfigDir string `env:"NEWSTERM_CONFIG_DIR"`

	// UseKeyring stores token values in the OS keyring instead of the
	// token file. Falls back to the file when no keyring is available.
	UseKeyring bool `env:"NEWSTERM_KEYRING" envDefault:"false"`

	// Debug enables the TUI debug log file.
	Debug bool `env:"NEWSTERM_DEBUG" envDefault:"false"`
}

// Load reads configuration from the environment.
// A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.ConfigDir == "" {
		cfg.ConfigDir = DefaultConfigDir()
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	return &cfg, nil
}

// DefaultConfigDir returns the default config directory following XDG spec
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "newsterm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "newsterm")
}
