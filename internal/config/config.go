// Package config handles persistent user configuration for wslm.
//
// Configuration is stored as JSON at ~/.config/wslm/config.json (or
// the platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	appDir   = "wslm"
	fileName = "config.json"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations.
type Config struct {
	// DefaultDistro is used when a command is run without --distro.
	DefaultDistro string `json:"default_distro,omitempty"`

	// InstallDir is where clones and imports place their backing
	// disks. Empty means ask per operation.
	InstallDir string `json:"install_dir,omitempty"`

	// StartupCommand, when set, runs inside a distribution right
	// after `wslm start` brings it up.
	StartupCommand string `json:"startup_command,omitempty"`

	// HistoryRetentionDays controls how long finalized action records
	// are kept. Zero means the default (7).
	HistoryRetentionDays int `json:"history_retention_days,omitempty"`
}

// Path returns the absolute path to the config file. If SetPath has
// been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk. A missing file yields a
// zero-value Config, not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from the given path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to the given path, creating the parent
// directory if needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}
