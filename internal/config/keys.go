package config

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "default-distro").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory
	// only; the caller is responsible for calling Save). It returns an
	// error when the value cannot be parsed for this key.
	Set func(cfg *Config, value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "default-distro",
		Description: "Distribution used when --distro is not specified",
		Get:         func(cfg *Config) string { return cfg.DefaultDistro },
		Set: func(cfg *Config, v string) error {
			cfg.DefaultDistro = v
			return nil
		},
	},
	{
		Name:        "install-dir",
		Description: "Directory where cloned distributions place their backing disks",
		Get:         func(cfg *Config) string { return cfg.InstallDir },
		Set: func(cfg *Config, v string) error {
			cfg.InstallDir = v
			return nil
		},
	},
	{
		Name:        "startup-command",
		Description: "Command run inside a distribution after 'wslm distro start'",
		Get:         func(cfg *Config) string { return cfg.StartupCommand },
		Set: func(cfg *Config, v string) error {
			cfg.StartupCommand = v
			return nil
		},
	},
	{
		Name:        "history-retention-days",
		Description: "Days to keep finalized action history records (0 = default of 7)",
		Get: func(cfg *Config) string {
			if cfg.HistoryRetentionDays == 0 {
				return ""
			}
			return strconv.Itoa(cfg.HistoryRetentionDays)
		},
		Set: func(cfg *Config, v string) error {
			days, err := strconv.Atoi(v)
			if err != nil || days < 0 {
				return fmt.Errorf("history-retention-days must be a non-negative integer, got %q", v)
			}
			cfg.HistoryRetentionDays = days
			return nil
		},
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
