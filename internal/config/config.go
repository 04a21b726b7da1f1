package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Corpus
	Dir        string // Wireframes root
	LedgerFile string // Project-wide ledger, relative to Dir unless absolute
	RulesFile  string // Optional YAML overriding expected landmark positions

	// Issue logs
	WriteIssueLogs bool

	// Auth for the report API (empty disables auth)
	APIKey string

	// Report publishing
	PublishURL    string
	PublishAPIKey string

	// Run queue
	MaxQueueSize int
	JobTTL       time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Watch mode
	WatchDebounce time.Duration

	LogLevel string

	Expectations Expectations
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		Dir:        envOr("WIRECHECK_DIR", "."),
		LedgerFile: envOr("WIRECHECK_LEDGER", "GENERAL_ISSUES.md"),
		RulesFile:  os.Getenv("WIRECHECK_RULES"),

		WriteIssueLogs: envBool("WIRECHECK_WRITE_LOGS", true),

		APIKey: os.Getenv("WIRECHECK_API_KEY"),

		PublishURL:    os.Getenv("WIRECHECK_PUBLISH_URL"),
		PublishAPIKey: os.Getenv("WIRECHECK_PUBLISH_KEY"),

		MaxQueueSize: envInt("WIRECHECK_MAX_QUEUE", 16),
		JobTTL:       envDuration("WIRECHECK_JOB_TTL", 1*time.Hour),

		MaxUploadBytes: envInt64("WIRECHECK_MAX_UPLOAD_BYTES", 5242880), // 5MB

		WatchDebounce: envDuration("WIRECHECK_WATCH_DEBOUNCE", 500*time.Millisecond),

		LogLevel: envOr("WIRECHECK_LOG_LEVEL", "info"),

		Expectations: DefaultExpectations(),
	}
	cfg.Expectations.applyEnv()

	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5242880
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = 500 * time.Millisecond
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("WIRECHECK_DIR is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Expectations.Validate()
}

// LedgerPath resolves the ledger file against the corpus root.
func (c Config) LedgerPath() string {
	if filepath.IsAbs(c.LedgerFile) {
		return c.LedgerFile
	}
	return filepath.Join(c.Dir, c.LedgerFile)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("WIRECHECK_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
