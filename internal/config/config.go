// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	WebhookSecret string
	Retention     time.Duration
	PruneInterval time.Duration
}

// RetentionEnabled reports whether old events should be pruned. A zero
// retention means events are kept forever.
func (c *Config) RetentionEnabled() bool {
	return c.Retention > 0
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional: HOOKBOARD_LISTEN_ADDR (127.0.0.1:8080),
// HOOKBOARD_DB_PATH (hookboard.db), HOOKBOARD_WEBHOOK_SECRET (empty disables
// signature verification), HOOKBOARD_RETENTION (0, pruning disabled), and
// HOOKBOARD_PRUNE_INTERVAL (1h).
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("HOOKBOARD_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	dbPath := "hookboard.db"
	if v, ok := os.LookupEnv("HOOKBOARD_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	var retention time.Duration
	if v, ok := os.LookupEnv("HOOKBOARD_RETENTION"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HOOKBOARD_RETENTION has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("HOOKBOARD_RETENTION must not be negative, got %q", v)
		}
		retention = parsed
	}

	pruneInterval := time.Hour
	if v, ok := os.LookupEnv("HOOKBOARD_PRUNE_INTERVAL"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("HOOKBOARD_PRUNE_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("HOOKBOARD_PRUNE_INTERVAL must be positive, got %q", v)
		}
		pruneInterval = parsed
	}

	return &Config{
		ListenAddr:    listenAddr,
		DBPath:        dbPath,
		WebhookSecret: os.Getenv("HOOKBOARD_WEBHOOK_SECRET"),
		Retention:     retention,
		PruneInterval: pruneInterval,
	}, nil
}
