package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"distrolabs/wslm/internal/config"
)

// setupTestConfig points the config package at a temp file and returns its path.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// execConfig creates the config command, wires up output buffers, runs with the
// given args, and returns what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSet_DefaultDistro(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "default-distro", "Ubuntu")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"Ubuntu"`) {
		t.Errorf("expected confirmation with distro name, got: %s", stdout)
	}

	// Verify it was persisted.
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.DefaultDistro != "Ubuntu" {
		t.Errorf("expected DefaultDistro %q, got %q", "Ubuntu", cfg.DefaultDistro)
	}
}

func TestSet_HistoryRetentionDays(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "history-retention-days", "30")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"30"`) {
		t.Errorf("expected confirmation, got: %s", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.HistoryRetentionDays != 30 {
		t.Errorf("expected HistoryRetentionDays 30, got %d", cfg.HistoryRetentionDays)
	}
}

func TestSet_HistoryRetentionDays_Invalid(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "history-retention-days", "soon")

	if !strings.Contains(stderr, "history-retention-days") {
		t.Errorf("expected validation error, got: %s", stderr)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "bogus-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}

func TestSet_KeyNameCaseInsensitive(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "DEFAULT-DISTRO", "Debian")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"Debian"`) {
		t.Errorf("expected confirmation, got: %s", stdout)
	}
}
