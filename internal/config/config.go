// Package config loads canvas settings from an optional YAML file and the
// environment. Environment variables win over the file; command-line flags
// are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvDatabase     = "CANVAS_DB"
	EnvHistoryDepth = "CANVAS_HISTORY_DEPTH"
	EnvLibrary      = "CANVAS_LIBRARY"
	EnvLogLevel     = "CANVAS_LOG_LEVEL"
)

// Defaults.
const (
	DefaultHistoryDepth = 100
	DefaultLogLevel     = "info"
)

// Config holds canvas settings.
type Config struct {
	// Database is the SQLite page store path. Empty disables persistence.
	Database string `yaml:"database"`

	// HistoryDepth bounds the undo stack of an editing session.
	HistoryDepth int `yaml:"history_depth"`

	// LibraryDir is a directory of CUE component files.
	LibraryDir string `yaml:"library"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HistoryDepth: DefaultHistoryDepth,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads the YAML file at path, if path is non-empty, over the
// defaults and then applies environment overrides. Unknown keys in the
// file are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Database = getEnv(EnvDatabase, cfg.Database)
	cfg.LibraryDir = getEnv(EnvLibrary, cfg.LibraryDir)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	depth, err := getEnvAsInt(EnvHistoryDepth, cfg.HistoryDepth)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryDepth = depth

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.HistoryDepth < 1 {
		return fmt.Errorf("config: history_depth must be at least 1, got %d", c.HistoryDepth)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
}

// NewLogger returns a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
