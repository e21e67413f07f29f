// Package backend talks to the host's WSL layer. Every operation here
// is an opaque unit of work from the orchestration layer's point of
// view: it either succeeds or returns an error to be surfaced.
package backend

import (
	"context"

	"distrolabs/wslm/internal/domain"
)

// CloneOpts describes a clone operation: duplicate Source under
// NewName, installed at InstallPath.
type CloneOpts struct {
	Source      string
	NewName     string
	InstallPath string
}

// MountOpts describes attaching a host disk to WSL.
type MountOpts struct {
	// DiskPath is the host path of the disk (physical path or VHD).
	DiskPath string

	// VHD must be set when DiskPath points at a virtual disk file.
	VHD bool

	// Bare attaches the disk without mounting any filesystem.
	Bare bool

	// Name overrides the mount point name under /mnt/wsl.
	Name string

	// Type is the filesystem type passed to mount (default ext4).
	Type string

	// Partition selects a partition index; 0 mounts the whole disk.
	Partition int
}

// RunOpts describes a command executed inside a distribution.
type RunOpts struct {
	Distro  string
	User    string // empty = distribution default user
	Command string // run through the distribution's shell
}

// Client is the capability surface the orchestration layer consumes.
// The production implementation shells out to wsl.exe; tests use a
// double.
type Client interface {
	// List returns all registered distributions with their current
	// lifecycle states.
	List(ctx context.Context) ([]domain.Distribution, error)

	// Start boots a distribution's VM.
	Start(ctx context.Context, name string) error

	// Stop terminates a distribution's VM.
	Stop(ctx context.Context, name string) error

	// Clone duplicates a distribution under a new name.
	Clone(ctx context.Context, opts CloneOpts) error

	// Rename changes a distribution's registration name.
	Rename(ctx context.Context, name, newName string) error

	// Move relocates a distribution's backing disk.
	Move(ctx context.Context, name, newPath string) error

	// Export writes a distribution's filesystem to a tar archive.
	Export(ctx context.Context, name, tarPath string) error

	// Resize grows the distribution's virtual disk to the given size,
	// expressed the way wsl.exe accepts it (e.g. "256GB").
	Resize(ctx context.Context, name, size string) error

	// Compact shrinks the distribution's virtual disk to its used size.
	Compact(ctx context.Context, name string) error

	// SetSparse toggles automatic disk-space reclamation.
	SetSparse(ctx context.Context, name string, on bool) error

	// Mount attaches a host disk and returns wsl.exe's response text,
	// which names the mount point.
	Mount(ctx context.Context, opts MountOpts) (string, error)

	// Unmount detaches a previously mounted disk.
	Unmount(ctx context.Context, diskPath string) error

	// RunCommand executes a command inside a distribution and returns
	// its combined output.
	RunCommand(ctx context.Context, opts RunOpts) (string, error)
}
