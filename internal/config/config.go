package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the TrackWatch server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mailbox  MailboxConfig
	Sync     SyncConfig
	Classify ClassifyConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// MailboxConfig points at the mail relay that exposes account mailboxes over
// HTTP. Sender is the origin filter: only messages from that address are ever
// fetched.
type MailboxConfig struct {
	BaseURL string
	Token   string
	Sender  string
	Timeout time.Duration
}

type SyncConfig struct {
	BatchLimit int
	Workers    int
}

// ClassifyConfig carries the crash rule as configuration: the two alert types
// that must both be present on a device before it is classified as a crash.
type ClassifyConfig struct {
	CrashPair [2]string
}

const defaultSender = "alerts-no-reply@tracking-update.com"

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("TRACKWATCH_PORT", 8080),
			Env:  envString("TRACKWATCH_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Mailbox: MailboxConfig{
			BaseURL: os.Getenv("MAILBOX_BASE_URL"),
			Token:   os.Getenv("MAILBOX_TOKEN"),
			Sender:  envString("MAILBOX_SENDER", defaultSender),
			Timeout: envDuration("MAILBOX_TIMEOUT", 30*time.Second),
		},
		Sync: SyncConfig{
			BatchLimit: envInt("SYNC_BATCH_LIMIT", 10),
			Workers:    envInt("SYNC_WORKERS", 4),
		},
	}

	pair, err := parseCrashPair(envString("CLASSIFY_CRASH_PAIR", "Over-turn,Heavy Impact"))
	if err != nil {
		return nil, err
	}
	cfg.Classify.CrashPair = pair

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Mailbox.BaseURL == "" {
		return fmt.Errorf("MAILBOX_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Mailbox.BaseURL, "http://") && !strings.HasPrefix(c.Mailbox.BaseURL, "https://") {
		return fmt.Errorf("MAILBOX_BASE_URL must start with http:// or https://, got %q", c.Mailbox.BaseURL)
	}

	if c.Sync.BatchLimit < 1 {
		return fmt.Errorf("SYNC_BATCH_LIMIT must be at least 1, got %d", c.Sync.BatchLimit)
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("SYNC_WORKERS must be at least 1, got %d", c.Sync.Workers)
	}

	return nil
}

func parseCrashPair(raw string) ([2]string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return [2]string{}, fmt.Errorf("CLASSIFY_CRASH_PAIR must be two alert types separated by a comma, got %q", raw)
	}
	first := strings.TrimSpace(parts[0])
	second := strings.TrimSpace(parts[1])
	if first == "" || second == "" {
		return [2]string{}, fmt.Errorf("CLASSIFY_CRASH_PAIR must be two alert types separated by a comma, got %q", raw)
	}
	return [2]string{first, second}, nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
