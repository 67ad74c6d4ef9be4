// Package config loads fracta's ambient configuration: a YAML file with
// environment-variable overrides, following the layering the rest of the
// ecosystem uses (file defaults, env wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is fracta's process-wide configuration: which Locations to open on
// startup, and the tuning knobs for the watcher and search layers.
type Config struct {
	Locations []LocationConfig `yaml:"locations"`
	Watcher   WatcherConfig    `yaml:"watcher"`
	Search    SearchConfig     `yaml:"search"`
	Log       LogConfig        `yaml:"log"`
}

// LocationConfig names a directory fracta should treat as a managed
// Location.
type LocationConfig struct {
	Label string `yaml:"label"`
	Root  string `yaml:"root"`
}

// WatcherConfig tunes the filesystem watcher.
type WatcherConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
}

// SearchConfig tunes the full-text index.
type SearchConfig struct {
	// HeapBudgetBytes is the configured search-index memory budget in bytes.
	// No package in this module reads it.
	HeapBudgetBytes int64 `yaml:"heap_budget_bytes"`
}

// LogConfig controls process-wide log verbosity and destination.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns configuration with no Locations and conservative
// defaults for everything else.
func DefaultConfig() *Config {
	return &Config{
		Watcher: WatcherConfig{
			DebounceWindow: 500 * time.Millisecond,
		},
		Search: SearchConfig{
			HeapBudgetBytes: 50_000_000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function. This allows tests to provide isolated environment values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables override config file
	if level := getenv("FRACTA_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logFile := getenv("FRACTA_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}
	if root := getenv("FRACTA_LOCATION"); root != "" {
		cfg.Locations = append(cfg.Locations, LocationConfig{Label: "default", Root: root})
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fracta", "config.yaml")
	}

	// Fall back to ~/.config
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fracta", "config.yaml")
}
