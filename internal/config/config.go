// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"json"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	// Timeouts are expressed in seconds.
	DisconnectTimeoutSec      int `env:"MUSIC_DISCONNECT_TIMEOUT" envDefault:"300"`
	AloneDisconnectTimeoutSec int `env:"MUSIC_ALONE_DISCONNECT_TIMEOUT" envDefault:"60"`
	ResolveTimeoutSec         int `env:"RESOLVE_TIMEOUT" envDefault:"20"`

	DefaultVolume int    `env:"MUSIC_DEFAULT_VOLUME" envDefault:"5"`
	YouTubeProxy  string `env:"YOUTUBE_PROXY"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// New loads .env (when present) and parses the environment into a Config.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the Discord bot cannot start without.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	if c.DisconnectTimeoutSec <= 0 || c.AloneDisconnectTimeoutSec <= 0 {
		return errors.New("music disconnect timeouts must be positive")
	}
	if c.DefaultVolume < 0 {
		return errors.New("MUSIC_DEFAULT_VOLUME must not be negative")
	}
	return c.validateStorage()
}

func (c *Config) validateStorage() error {
	switch c.StorageDriver {
	case StorageJSON, StorageSQLite:
		return nil
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (expected %q or %q)", c.StorageDriver, StorageJSON, StorageSQLite)
	}
}

func (c *Config) DisconnectTimeout() time.Duration {
	return time.Duration(c.DisconnectTimeoutSec) * time.Second
}

func (c *Config) AloneDisconnectTimeout() time.Duration {
	return time.Duration(c.AloneDisconnectTimeoutSec) * time.Second
}

func (c *Config) ResolveTimeout() time.Duration {
	return time.Duration(c.ResolveTimeoutSec) * time.Second
}
