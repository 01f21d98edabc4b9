// SPDX-License-Identifier: MIT

// Package config loads vidstash configuration with precedence ENV > file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime settings for the local stores.
type Config struct {
	// DataDir is the root directory for all durable state.
	DataDir string `yaml:"dataDir"`

	// MediaBackend selects the media store backend: "badger", "sqlite" or "memory".
	MediaBackend string `yaml:"mediaBackend"`

	// PostStorePath is the path of the serialized post partition file.
	// Defaults to <DataDir>/posts.json.
	PostStorePath string `yaml:"postStorePath"`

	// HandleDir is the scratch directory for transient playback handles.
	// Defaults to <DataDir>/handles.
	HandleDir string `yaml:"handleDir"`

	// LogLevel is the zerolog level name ("debug", "info", ...).
	LogLevel string `yaml:"logLevel"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir:      "./data",
		MediaBackend: "badger",
		LogLevel:     "info",
	}
}

// Load loads configuration with precedence: ENV > file > defaults.
// An empty path skips the file layer entirely (ENV-only operation).
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("VIDSTASH_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDSTASH_MEDIA_BACKEND")); v != "" {
		cfg.MediaBackend = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDSTASH_POST_STORE")); v != "" {
		cfg.PostStorePath = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDSTASH_HANDLE_DIR")); v != "" {
		cfg.HandleDir = v
	}
	if v := strings.TrimSpace(os.Getenv("VIDSTASH_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
}

// normalize fills derived paths from DataDir.
func (c *Config) normalize() {
	if c.PostStorePath == "" {
		c.PostStorePath = filepath.Join(c.DataDir, "posts.json")
	}
	if c.HandleDir == "" {
		c.HandleDir = filepath.Join(c.DataDir, "handles")
	}
}

// Validate checks the configuration for operability.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: dataDir must not be empty")
	}
	switch c.MediaBackend {
	case "badger", "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown media backend %q (supported: badger, sqlite, memory)", c.MediaBackend)
	}
	return nil
}
