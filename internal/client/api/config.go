package api

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from OFFICECTL_* environment variables.
type Config struct {
	BaseURLs    []string      `envconfig:"BASE_URLS" default:"http://localhost:8080"`
	SessionFile string        `envconfig:"SESSION_FILE"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"10s"`
	EndpointTTL time.Duration `envconfig:"ENDPOINT_TTL" default:"24h"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("OFFICECTL", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.SessionFile = filepath.Join(dir, "officectl", "session.json")
	}
	if len(cfg.BaseURLs) == 0 {
		return Config{}, fmt.Errorf("OFFICECTL_BASE_URLS must list at least one URL")
	}
	return cfg, nil
}
