// Package config loads app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :5000).
	HTTPAddr string `mapstructure:"PARKSMART_HTTP_ADDR"`
	// Env is "dev" or "prod". Dev seeds a couple of registered vehicles.
	Env string `mapstructure:"PARKSMART_ENV"`
	// DBPath is the SQLite database file path.
	DBPath string `mapstructure:"PARKSMART_DB_PATH"`

	// EntryCameraAddr / ExitCameraAddr are the host[:port] of the gate
	// cameras; the server GETs http://<addr>/capture to grab a still.
	EntryCameraAddr string `mapstructure:"PARKSMART_ENTRY_CAMERA_ADDR"`
	ExitCameraAddr  string `mapstructure:"PARKSMART_EXIT_CAMERA_ADDR"`

	// CaptureDir is where evidence stills are written and served from.
	CaptureDir string `mapstructure:"PARKSMART_CAPTURE_DIR"`

	// RecognizerURL is the base URL of the external plate-recognition
	// service. Empty leaves recognition permanently not-ready; admission
	// then runs with unresolved plates rather than failing.
	RecognizerURL string `mapstructure:"PARKSMART_RECOGNIZER_URL"`

	// SlotCount is the number of physical parking slots reported by the
	// occupancy sensor board.
	SlotCount int `mapstructure:"PARKSMART_SLOT_COUNT"`

	// GraceMinutes is the initial free parking duration.
	GraceMinutes int `mapstructure:"PARKSMART_GRACE_MINUTES"`
	// RatePerMinute is the fee rate in currency units per minute.
	RatePerMinute int64 `mapstructure:"PARKSMART_RATE_PER_MINUTE"`

	// HistoryLimit is how many sessions /history returns without a range.
	HistoryLimit int `mapstructure:"PARKSMART_HISTORY_LIMIT"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("PARKSMART_HTTP_ADDR", ":5000")
	v.SetDefault("PARKSMART_ENV", "dev")
	v.SetDefault("PARKSMART_DB_PATH", "./data/parksmart.db")
	v.SetDefault("PARKSMART_ENTRY_CAMERA_ADDR", "")
	v.SetDefault("PARKSMART_EXIT_CAMERA_ADDR", "")
	v.SetDefault("PARKSMART_CAPTURE_DIR", "./data/captures")
	v.SetDefault("PARKSMART_RECOGNIZER_URL", "")
	v.SetDefault("PARKSMART_SLOT_COUNT", 4)
	v.SetDefault("PARKSMART_GRACE_MINUTES", 15)
	v.SetDefault("PARKSMART_RATE_PER_MINUTE", 100)
	v.SetDefault("PARKSMART_HISTORY_LIMIT", 50)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: PARKSMART_HTTP_ADDR must be set")
	}

	cfg.Env = strings.ToLower(cfg.Env)
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}

	if cfg.SlotCount <= 0 {
		return nil, errors.New("config: PARKSMART_SLOT_COUNT must be positive")
	}
	if cfg.GraceMinutes < 0 {
		return nil, errors.New("config: PARKSMART_GRACE_MINUTES must not be negative")
	}
	if cfg.RatePerMinute < 0 {
		return nil, errors.New("config: PARKSMART_RATE_PER_MINUTE must not be negative")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}

	return &cfg, nil
}
