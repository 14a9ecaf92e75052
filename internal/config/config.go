// Package config resolves app settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the desktop client reads at startup.
type Config struct {
	// APIBaseURL is the casino backend root, e.g. http://localhost:8099.
	APIBaseURL string `env:"FORTUNA_API_URL" envDefault:"http://localhost:8099"`

	// DataDir holds the SQLite ledger cache and the keyring fallback
	// file. Empty means the per-user config directory.
	DataDir string `env:"FORTUNA_DATA_DIR"`

	// RequestTimeout bounds each backend call.
	RequestTimeout time.Duration `env:"FORTUNA_REQUEST_TIMEOUT" envDefault:"15s"`

	// NoticeTTL controls how long transient messages stay visible.
	NoticeTTL time.Duration `env:"FORTUNA_NOTICE_TTL" envDefault:"5s"`

	// AnimSpeedup divides every animation duration and tick interval;
	// values above 1 are for development only.
	AnimSpeedup int `env:"FORTUNA_ANIM_SPEEDUP" envDefault:"1"`

	LogLevel string `env:"FORTUNA_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and fills in the data directory default.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.AnimSpeedup < 1 {
		cfg.AnimSpeedup = 1
	}
	if cfg.DataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		cfg.DataDir = filepath.Join(dir, "fortuna-desktop")
	}
	return cfg, nil
}

// LedgerPath is the SQLite database location under the data dir.
func (c Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// SecretsFallbackPath is where the token store writes when no OS keyring
// is available.
func (c Config) SecretsFallbackPath() string {
	return filepath.Join(c.DataDir, "secrets.json")
}
