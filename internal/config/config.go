// Package config loads application configuration from an optional TOML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied before the config file and environment are read.
const (
	DefaultDBPath            = "clipkeeper.db"
	DefaultPollInterval      = time.Second
	DefaultListenAddr        = "127.0.0.1:8731"
	DefaultRetentionInterval = 24 * time.Hour
	DefaultLogLevel          = "info"
)

// Config holds the application configuration.
type Config struct {
	DBPath            string
	PollInterval      time.Duration
	ListenAddr        string
	RetentionDays     int
	RetentionInterval time.Duration
	LogLevel          string
}

// fileConfig mirrors the TOML layout. Durations are strings such as "500ms" or "12h".
type fileConfig struct {
	DBPath            string `toml:"db_path"`
	PollInterval      string `toml:"poll_interval"`
	ListenAddr        string `toml:"listen_addr"`
	RetentionDays     *int   `toml:"retention_days"`
	RetentionInterval string `toml:"retention_interval"`
	LogLevel          string `toml:"log_level"`
}

// Load builds a validated Config. Values are layered in this order, later
// layers winning: built-in defaults, the TOML file named by CLIPKEEPER_CONFIG
// (if set), then individual environment variables:
// CLIPKEEPER_DB_PATH, CLIPKEEPER_POLL_INTERVAL, CLIPKEEPER_LISTEN_ADDR,
// CLIPKEEPER_RETENTION_DAYS, CLIPKEEPER_RETENTION_INTERVAL, CLIPKEEPER_LOG_LEVEL.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            DefaultDBPath,
		PollInterval:      DefaultPollInterval,
		ListenAddr:        DefaultListenAddr,
		RetentionInterval: DefaultRetentionInterval,
		LogLevel:          DefaultLogLevel,
	}

	if path, ok := os.LookupEnv("CLIPKEEPER_CONFIG"); ok && path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	if fc.ListenAddr != "" {
		c.ListenAddr = fc.ListenAddr
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.RetentionDays != nil {
		c.RetentionDays = *fc.RetentionDays
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("config file poll_interval has invalid duration %q: %w", fc.PollInterval, err)
		}
		c.PollInterval = d
	}
	if fc.RetentionInterval != "" {
		d, err := time.ParseDuration(fc.RetentionInterval)
		if err != nil {
			return fmt.Errorf("config file retention_interval has invalid duration %q: %w", fc.RetentionInterval, err)
		}
		c.RetentionInterval = d
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("CLIPKEEPER_DB_PATH"); ok {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv("CLIPKEEPER_LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := os.LookupEnv("CLIPKEEPER_LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	if v, ok := os.LookupEnv("CLIPKEEPER_POLL_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CLIPKEEPER_POLL_INTERVAL has invalid duration %q: %w", v, err)
		}
		c.PollInterval = parsed
	}

	if v, ok := os.LookupEnv("CLIPKEEPER_RETENTION_DAYS"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLIPKEEPER_RETENTION_DAYS has invalid integer %q: %w", v, err)
		}
		c.RetentionDays = parsed
	}

	if v, ok := os.LookupEnv("CLIPKEEPER_RETENTION_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CLIPKEEPER_RETENTION_INTERVAL has invalid duration %q: %w", v, err)
		}
		c.RetentionInterval = parsed
	}

	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("db path must not be empty"))
	}
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.PollInterval))
	}
	if c.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("retention days must not be negative, got %d", c.RetentionDays))
	}
	if c.RetentionInterval <= 0 {
		errs = append(errs, fmt.Errorf("retention interval must be positive, got %s", c.RetentionInterval))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel returns the configured log level. Validate guarantees it parses.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ParseLogLevel maps debug, info, warn, or error (case-insensitive) to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
