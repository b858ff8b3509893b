// Package config provides runtime configuration loaded from environment
// variables, optionally seeded from a .env file. Shared by every big5-stats
// subcommand; command-line flags override what is loaded here.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pfrederiksen/big5-stats/internal/cache"
	"github.com/pfrederiksen/big5-stats/internal/fetcher"
	"github.com/pfrederiksen/big5-stats/internal/logger"
	"github.com/pfrederiksen/big5-stats/internal/season"
)

// Config holds every tunable of the pipeline, cache and API server
type Config struct {
	// Fetching
	BaseURL      string
	UserAgent    string
	FetchTimeout time.Duration
	RatePerMin   int

	// Cache
	CurrentTTL    time.Duration
	HistoricalTTL time.Duration

	// API server
	ListenAddr  string
	CORSOrigins []string

	// Ambient
	LogLevel logger.Level
	DataDir  string
}

// Default returns the configuration used when no variable is set
func Default() *Config {
	return &Config{
		BaseURL:       season.DefaultBaseURL,
		UserAgent:     fetcher.DefaultUserAgent,
		FetchTimeout:  60 * time.Second,
		RatePerMin:    10,
		CurrentTTL:    cache.DefaultCurrentTTL,
		HistoricalTTL: cache.DefaultHistoricalTTL,
		ListenAddr:    ":8080",
		CORSOrigins:   []string{"*"},
		LogLevel:      logger.LevelInfo,
		DataDir:       "~/.local/share/big5-stats",
	}
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables over Default().
// Every invalid variable is reported in the returned error.
func Load() (*Config, error) {
	cfg := Default()
	var errs []error

	cfg.BaseURL = envOr("BIG5_BASE_URL", cfg.BaseURL)
	cfg.UserAgent = envOr("BIG5_USER_AGENT", cfg.UserAgent)
	cfg.ListenAddr = envOr("BIG5_LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataDir = envOr("BIG5_DATA_DIR", cfg.DataDir)
	cfg.CORSOrigins = envList("BIG5_CORS_ORIGINS", cfg.CORSOrigins)

	var err error
	if cfg.FetchTimeout, err = envDuration("BIG5_FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.CurrentTTL, err = envDuration("BIG5_CACHE_CURRENT_TTL", cfg.CurrentTTL); err != nil {
		errs = append(errs, err)
	}
	if cfg.HistoricalTTL, err = envDuration("BIG5_CACHE_HISTORICAL_TTL", cfg.HistoricalTTL); err != nil {
		errs = append(errs, err)
	}
	if cfg.RatePerMin, err = envInt("BIG5_RATE_PER_MINUTE", cfg.RatePerMin); err != nil {
		errs = append(errs, err)
	}

	if v := os.Getenv("BIG5_LOG_LEVEL"); v != "" {
		level, err := logger.ParseLevel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("BIG5_LOG_LEVEL: %w", err))
		} else {
			cfg.LogLevel = level
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fallback, fmt.Errorf("%s: invalid non-negative integer %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
