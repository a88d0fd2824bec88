// Package config provides configuration loading and structs for the ti4lookup server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/ti4lookup/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool               `yaml:"debug"`
	Server      ServerConfig       `yaml:"server"`
	Data        DataConfig         `yaml:"data"`
	Search      SearchConfig       `yaml:"search"`
	Preferences PreferencesConfig  `yaml:"preferences"`
	Sort        ranking.SortConfig `yaml:"sort"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DataConfig locates the card tables: a directory of CSV files or an .xlsx workbook.
type DataConfig struct {
	Path  string `yaml:"path"`
	Watch *bool  `yaml:"watch"`
	// WatchDebounceMS is how long the watcher waits for writes to settle before reloading.
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
}

// WatchOrDefault returns whether to watch the data path; defaults to true when unset.
func (d *DataConfig) WatchOrDefault() bool {
	if d.Watch != nil {
		return *d.Watch
	}
	return true
}

// SearchConfig holds index and query settings.
type SearchConfig struct {
	Threshold        float64 `yaml:"threshold"`
	NameWeight       float64 `yaml:"name_weight"`
	SearchTextWeight float64 `yaml:"search_text_weight"`
	// CategoryLimit caps results when a category is selected; GlobalLimit otherwise.
	CategoryLimit  int `yaml:"category_limit"`
	GlobalLimit    int `yaml:"global_limit"`
	DebounceMS     int `yaml:"debounce_ms"`
	IndexCacheSize int `yaml:"index_cache_size"`
	Suggestions    int `yaml:"suggestions"`
}

// Debounce returns the live query debounce delay.
func (s *SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// PreferencesConfig selects the preference store.
type PreferencesConfig struct {
	// Backend is "sqlite" or "yaml".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	// Profile is the profile the CLI reads and records recent searches to.
	Profile string `yaml:"profile"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Data.Path = expandPath(cfg.Data.Path, configDir)
	cfg.Preferences.Path = expandPath(cfg.Preferences.Path, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
