package domain

import "errors"

// Sentinel errors for classifying backend failures. The backend wraps
// these so callers can branch on error categories without parsing
// wsl.exe output themselves.
//
//	return fmt.Errorf("failed to stop %q: %w", name, domain.ErrNotFound)
var (
	// ErrNotFound indicates no distribution with the given name is registered.
	ErrNotFound = errors.New("distribution not found")

	// ErrBusy indicates the distribution is in a transitional state and
	// cannot accept the operation right now.
	ErrBusy = errors.New("distribution busy")

	// ErrBackendUnavailable indicates the WSL layer itself could not be
	// reached (wsl.exe missing, the service not running).
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrInvalidName indicates a distribution name that the backend
	// would reject.
	ErrInvalidName = errors.New("invalid distribution name")
)
