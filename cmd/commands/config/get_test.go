package config

import (
	"strings"
	"testing"

	"distrolabs/wslm/internal/config"
)

func TestGet_DefaultDistro_NotSet(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "get", "--key", "default-distro")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "not set") {
		t.Errorf("expected 'not set', got: %s", stdout)
	}
}

func TestGet_DefaultDistro_Set(t *testing.T) {
	path := setupTestConfig(t)

	// Write a config value directly.
	cfg := &config.Config{DefaultDistro: "Ubuntu"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	stdout, stderr := execConfig(t, "get", "--key", "default-distro")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, "Ubuntu") {
		t.Errorf("expected 'Ubuntu', got: %s", stdout)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "get", "--key", "bogus-key")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}
