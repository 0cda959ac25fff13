package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cfg.CommandPrefix != "!" {
		t.Errorf("CommandPrefix = %q, want %q", cfg.CommandPrefix, "!")
	}
	if cfg.StorageDriver != StorageJSON {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, StorageJSON)
	}
	if got := cfg.DisconnectTimeout(); got != 300*time.Second {
		t.Errorf("DisconnectTimeout() = %v, want 5m", got)
	}
	if got := cfg.AloneDisconnectTimeout(); got != time.Minute {
		t.Errorf("AloneDisconnectTimeout() = %v, want 1m", got)
	}
	if cfg.DefaultVolume != 5 {
		t.Errorf("DefaultVolume = %d, want 5", cfg.DefaultVolume)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_PATH", "music.db")
	t.Setenv("MUSIC_DISCONNECT_TIMEOUT", "12")
	t.Setenv("MUSIC_ALONE_DISCONNECT_TIMEOUT", "3")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.StorageDriver != StorageSQLite || cfg.StoragePath != "music.db" {
		t.Errorf("storage = %s/%s, want sqlite/music.db", cfg.StorageDriver, cfg.StoragePath)
	}
	if got := cfg.DisconnectTimeout(); got != 12*time.Second {
		t.Errorf("DisconnectTimeout() = %v, want 12s", got)
	}
	if got := cfg.AloneDisconnectTimeout(); got != 3*time.Second {
		t.Errorf("AloneDisconnectTimeout() = %v, want 3s", got)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")

	if _, err := New(); err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}

func TestValidateRequiresToken(t *testing.T) {
	cfg := &Config{
		StorageDriver:             StorageJSON,
		DisconnectTimeoutSec:      1,
		AloneDisconnectTimeoutSec: 1,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when DISCORD_TOKEN is empty")
	}

	cfg.DiscordToken = "token"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
