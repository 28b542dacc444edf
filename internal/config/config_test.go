package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":8080" {
		t.Fatalf("unexpected default address: %q", cfg.ServerAddress)
	}
	if cfg.MaxHistoryRounds != 10 || cfg.DebounceWindow != 300*time.Millisecond {
		t.Fatalf("unexpected tracker defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker_config.json")
	content := `{"server":{"address":":9090"},"tracker":{"max_history_rounds":25,"debounce_millis":100,"max_rounds":12},"session_idle_minutes":5}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("TRACKER_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":7070" {
		t.Fatalf("expected env override to win, got %q", cfg.ServerAddress)
	}
	if cfg.MaxHistoryRounds != 25 || cfg.DebounceWindow != 100*time.Millisecond || cfg.MaxRounds != 12 {
		t.Fatalf("unexpected tracker config: %+v", cfg)
	}
	if cfg.SessionIdleTTL != 5*time.Minute {
		t.Fatalf("unexpected idle TTL: %v", cfg.SessionIdleTTL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}
