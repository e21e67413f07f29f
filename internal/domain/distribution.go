package domain

import "time"

// State is a distribution's lifecycle state as last observed from the
// hypervisor layer. It is a snapshot, not a live value: by the time a
// caller acts on it the distribution may already be elsewhere.
type State string

const (
	// StateRunning means the distribution's VM is up.
	StateRunning State = "running"

	// StateStopped means the distribution is registered but not running.
	StateStopped State = "stopped"

	// StateTransitioning covers the backend's in-between states
	// (installing, converting, uninstalling). A transitioning
	// distribution must be treated as if running for the purpose of
	// deciding whether a stop precondition applies.
	StateTransitioning State = "transitioning"

	// StateUnknown means the distribution was not present in the last
	// snapshot, or no snapshot has been taken yet.
	StateUnknown State = "unknown"
)

// Distribution represents one registered WSL distribution.
type Distribution struct {
	// Name is the registration name, unique per machine.
	Name string `json:"name"`

	// GUID is the registry key identifying the distribution, when known.
	GUID string `json:"guid,omitempty"`

	// State is the lifecycle state at snapshot time.
	State State `json:"state"`

	// Version is the WSL version the distribution runs under (1 or 2).
	Version int `json:"version"`

	// Default is true for the machine's default distribution.
	Default bool `json:"default,omitempty"`

	// BasePath is the install directory holding the virtual disk.
	BasePath string `json:"base_path,omitempty"`

	// DiskBytes is the size of the backing virtual disk on the host
	// filesystem, or 0 when it could not be determined.
	DiskBytes int64 `json:"disk_bytes,omitempty"`

	// LastSeen is when this snapshot was taken.
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// IsRunning reports whether the distribution should be considered live
// for precondition purposes. Transitioning counts as running: a second
// action must not start against a target that another cause is about
// to stop or start.
func (d Distribution) IsRunning() bool {
	return d.State == StateRunning || d.State == StateTransitioning
}
