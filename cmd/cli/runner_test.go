package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	r := NewRunner(RunnerOpts{Output: &out})
	app := r.App()
	app.Writer = &out
	app.ErrWriter = &out

	argv := append([]string{"music-cli", "--driver", "json", "--path", path}, args...)
	err := app.Run(context.Background(), argv)
	return out.String(), err
}

func TestSettingsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	t.Run("empty list", func(t *testing.T) {
		out, err := run(t, path, "settings", "list")
		if err != nil {
			t.Fatalf("list error = %v", err)
		}
		if !strings.Contains(out, "No settings stored.") {
			t.Errorf("list output = %q", out)
		}
	})

	t.Run("set volume", func(t *testing.T) {
		out, err := run(t, path, "settings", "set-volume", "--guild", "g1", "--channel", "c1", "--volume", "9")
		if err != nil {
			t.Fatalf("set-volume error = %v", err)
		}
		if !strings.Contains(out, "Volume for g1:c1 set to 9") {
			t.Errorf("set-volume output = %q", out)
		}
	})

	t.Run("show", func(t *testing.T) {
		out, err := run(t, path, "settings", "show", "--guild", "g1", "--channel", "c1")
		if err != nil {
			t.Fatalf("show error = %v", err)
		}
		if !strings.Contains(out, "Volume:       9") {
			t.Errorf("show output = %q", out)
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := run(t, path, "settings", "list")
		if err != nil {
			t.Fatalf("list error = %v", err)
		}
		if !strings.Contains(out, "g1") || !strings.Contains(out, "c1") {
			t.Errorf("list output = %q", out)
		}
	})

	t.Run("reset", func(t *testing.T) {
		if _, err := run(t, path, "settings", "reset", "--guild", "g1", "--channel", "c1"); err != nil {
			t.Fatalf("reset error = %v", err)
		}
		if _, err := run(t, path, "settings", "show", "--guild", "g1", "--channel", "c1"); err == nil {
			t.Error("show after reset should fail")
		}
	})
}

func TestSetVolumeRejectsNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	_, err := run(t, path, "settings", "set-volume", "-g", "g1", "-c", "c1", "--volume=-1")
	if err == nil {
		t.Fatal("expected error for negative volume")
	}
}

func TestVolumeString(t *testing.T) {
	if got := volumeString(nil); got != "default" {
		t.Errorf("volumeString(nil) = %q", got)
	}
	v := 3
	if got := volumeString(&v); got != "3" {
		t.Errorf("volumeString(3) = %q", got)
	}
}
