package util

import (
	"fmt"
	"regexp"
)

// validDistroChars matches the characters WSL accepts in registration
// names: alphanumerics, hyphens, underscores, and periods.
var validDistroChars = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)

// ValidateDistroName checks a name against the rules the registration
// layer enforces:
//   - Non-empty
//   - Only alphanumerics, hyphens, underscores, and periods
//   - First character must be alphanumeric
func ValidateDistroName(name string) error {
	if name == "" {
		return fmt.Errorf("distribution name must not be empty")
	}

	if !validDistroChars.MatchString(name) {
		return fmt.Errorf("distribution name %q contains invalid characters (only a-z, A-Z, 0-9, hyphens, underscores, and periods are allowed)", name)
	}

	if !isAlphanumeric(name[0]) {
		return fmt.Errorf("distribution name must start with an alphanumeric character, got %q", string(name[0]))
	}

	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
