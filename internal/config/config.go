package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	Database *struct {
		Path string `json:"path"`
	} `json:"database"`
	Tracker *struct {
		MaxHistoryRounds int `json:"max_history_rounds"`
		DebounceMillis   int `json:"debounce_millis"`
		MaxRounds        int `json:"max_rounds"`
	} `json:"tracker"`
	// SessionIdleMinutes controls how long a live tracker session may
	// sit untouched before the background sweeper flushes and drops it.
	SessionIdleMinutes int `json:"session_idle_minutes"`
}

// envOverrides are environment variables layered on top of the config
// file. They win over file values when set.
type envOverrides struct {
	ServerAddress string `env:"TRACKER_ADDR"`
	DBPath        string `env:"TRACKER_DB"`
}

// Config contains the fully resolved runtime configuration.
type Config struct {
	ServerAddress    string
	DBPath           string
	MaxHistoryRounds int
	DebounceWindow   time.Duration
	MaxRounds        int
	SessionIdleTTL   time.Duration
}

// Load reads the configuration file at path, applies defaults and then
// environment overrides. The file is optional: a missing file yields the
// defaults, but a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ServerAddress:    ":8080",
		DBPath:           "./data/tracker.db",
		MaxHistoryRounds: 10,
		DebounceWindow:   300 * time.Millisecond,
		SessionIdleTTL:   30 * time.Minute,
	}

	b, err := os.ReadFile(path)
	if err == nil {
		var rc rawConfig
		if err := json.Unmarshal(b, &rc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if rc.Server != nil && strings.TrimSpace(rc.Server.Address) != "" {
			cfg.ServerAddress = strings.TrimSpace(rc.Server.Address)
		}
		if rc.Database != nil && strings.TrimSpace(rc.Database.Path) != "" {
			cfg.DBPath = strings.TrimSpace(rc.Database.Path)
		}
		if rc.Tracker != nil {
			if rc.Tracker.MaxHistoryRounds > 0 {
				cfg.MaxHistoryRounds = rc.Tracker.MaxHistoryRounds
			}
			if rc.Tracker.DebounceMillis > 0 {
				cfg.DebounceWindow = time.Duration(rc.Tracker.DebounceMillis) * time.Millisecond
			}
			if rc.Tracker.MaxRounds < 0 {
				return nil, fmt.Errorf("config file %s: max_rounds must not be negative", path)
			}
			cfg.MaxRounds = rc.Tracker.MaxRounds
		}
		if rc.SessionIdleMinutes > 0 {
			cfg.SessionIdleTTL = time.Duration(rc.SessionIdleMinutes) * time.Minute
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	if overrides.ServerAddress != "" {
		cfg.ServerAddress = overrides.ServerAddress
	}
	if overrides.DBPath != "" {
		cfg.DBPath = overrides.DBPath
	}

	return cfg, nil
}
