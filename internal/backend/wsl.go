package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"distrolabs/wslm/internal/domain"

	"golang.org/x/sync/errgroup"
)

// lxssKey is the registry root under which WSL registers distributions.
const lxssKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Lxss`

// vhdxName is the backing disk file inside a distribution's BasePath.
const vhdxName = "ext4.vhdx"

// runFunc executes an external program and returns its combined
// output. It is a field (not a call to os/exec directly) so tests can
// substitute a fake without spawning processes.
type runFunc func(ctx context.Context, exe string, args ...string) ([]byte, error)

// WSL is the production Client, shelling out to wsl.exe (and reg.exe /
// diskpart for the operations wsl.exe does not expose).
type WSL struct {
	run runFunc
}

var _ Client = (*WSL)(nil)

// NewWSL returns a client that spawns real processes.
func NewWSL() *WSL {
	return &WSL{run: execRun}
}

// Inspector is implemented by clients that can enrich listings with
// registry and disk information. Callers assert for it; the plain
// List stays cheap for the polling watcher.
type Inspector interface {
	ListDetailed(ctx context.Context) ([]domain.Distribution, error)
}

// wsl invokes wsl.exe, decodes its UTF-16 output, and maps well-known
// failure text onto domain sentinels.
func (c *WSL) wsl(ctx context.Context, args ...string) (string, error) {
	raw, runErr := c.run(ctx, "wsl.exe", args...)
	text := decodeOutput(raw)
	if runErr == nil {
		return text, nil
	}

	detail := firstLine(text)
	if detail == "" {
		detail = runErr.Error()
	}
	if sentinel := classify(text); sentinel != nil {
		return text, fmt.Errorf("wsl %s: %s: %w", args[0], detail, sentinel)
	}
	return text, fmt.Errorf("wsl %s: %s", args[0], detail)
}

// List parses `wsl --list --verbose`. An empty registration set is not
// an error; a missing wsl.exe is.
func (c *WSL) List(ctx context.Context) ([]domain.Distribution, error) {
	text, err := c.wsl(ctx, "--list", "--verbose")
	if err != nil {
		return nil, err
	}
	return parseList(text), nil
}

// ListDetailed merges the live listing with registry metadata (GUID,
// install path) and the backing disk's size on the host filesystem.
// The two lookups are independent, so they run concurrently.
func (c *WSL) ListDetailed(ctx context.Context) ([]domain.Distribution, error) {
	var (
		distros []domain.Distribution
		entries []regDistro
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		distros, err = c.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = c.registryEntries(gctx)
		// Registry enrichment is best-effort: a listing without
		// sizes beats no listing.
		if err != nil {
			entries = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string]regDistro, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	now := time.Now()
	for i := range distros {
		distros[i].LastSeen = now
		e, ok := byName[distros[i].Name]
		if !ok {
			continue
		}
		distros[i].GUID = e.GUID()
		distros[i].BasePath = e.BasePath
		if e.BasePath != "" {
			if fi, err := os.Stat(filepath.Join(hostPath(e.BasePath), vhdxName)); err == nil {
				distros[i].DiskBytes = fi.Size()
			}
		}
	}

	return distros, nil
}

// Start boots the distribution by executing a no-op inside it.
func (c *WSL) Start(ctx context.Context, name string) error {
	_, err := c.wsl(ctx, "--distribution", name, "--exec", "true")
	return err
}

// Stop terminates the distribution's VM.
func (c *WSL) Stop(ctx context.Context, name string) error {
	_, err := c.wsl(ctx, "--terminate", name)
	return err
}

// Export writes the distribution's filesystem to a tar archive.
func (c *WSL) Export(ctx context.Context, name, tarPath string) error {
	_, err := c.wsl(ctx, "--export", name, tarPath)
	return err
}

// Clone duplicates a distribution by exporting it to a temporary
// archive and importing that under the new name. The archive is
// removed afterwards whatever happens.
func (c *WSL) Clone(ctx context.Context, opts CloneOpts) error {
	tarPath := filepath.Join(os.TempDir(), fmt.Sprintf("wslm-clone-%d.tar", time.Now().UnixNano()))
	defer os.Remove(tarPath)

	if err := c.Export(ctx, opts.Source, tarPath); err != nil {
		return fmt.Errorf("clone: export of %q failed: %w", opts.Source, err)
	}

	if _, err := c.wsl(ctx, "--import", opts.NewName, opts.InstallPath, tarPath, "--version", "2"); err != nil {
		return fmt.Errorf("clone: import as %q failed: %w", opts.NewName, err)
	}
	return nil
}

// Rename rewrites the DistributionName registry value. wsl.exe itself
// has no rename; this mirrors what the registration layer stores.
func (c *WSL) Rename(ctx context.Context, name, newName string) error {
	entry, err := c.findEntry(ctx, name)
	if err != nil {
		return err
	}

	raw, err := c.run(ctx, "reg.exe", "add", entry.Key,
		"/v", "DistributionName", "/t", "REG_SZ", "/d", newName, "/f")
	if err != nil {
		return fmt.Errorf("rename %q: %s", name, firstLine(decodeOutput(raw)))
	}
	return nil
}

// Move relocates the backing disk via wsl --manage.
func (c *WSL) Move(ctx context.Context, name, newPath string) error {
	_, err := c.wsl(ctx, "--manage", name, "--move", newPath)
	return err
}

// Resize grows the virtual disk via wsl --manage.
func (c *WSL) Resize(ctx context.Context, name, size string) error {
	_, err := c.wsl(ctx, "--manage", name, "--resize", size)
	return err
}

// SetSparse toggles automatic space reclamation via wsl --manage.
func (c *WSL) SetSparse(ctx context.Context, name string, on bool) error {
	_, err := c.wsl(ctx, "--manage", name, "--set-sparse", strconv.FormatBool(on))
	return err
}

// Compact shrinks the backing disk with a diskpart script, since
// wsl.exe exposes no compaction. The distribution must be stopped;
// the orchestration gate guarantees that.
func (c *WSL) Compact(ctx context.Context, name string) error {
	entry, err := c.findEntry(ctx, name)
	if err != nil {
		return err
	}
	if entry.BasePath == "" {
		return fmt.Errorf("compact %q: no BasePath registered", name)
	}
	vhdx := filepath.Join(hostPath(entry.BasePath), vhdxName)

	script := fmt.Sprintf("select vdisk file=%q\nattach vdisk readonly\ncompact vdisk\ndetach vdisk\n", vhdx)
	scriptPath := filepath.Join(os.TempDir(), fmt.Sprintf("wslm-compact-%d.txt", time.Now().UnixNano()))
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return fmt.Errorf("compact %q: %w", name, err)
	}
	defer os.Remove(scriptPath)

	raw, err := c.run(ctx, "diskpart", "/s", scriptPath)
	if err != nil {
		return fmt.Errorf("compact %q: diskpart failed: %s", name, firstLine(decodeOutput(raw)))
	}
	return nil
}

// Mount attaches a host disk. wsl.exe's response names the mount
// point, so it is returned for display.
func (c *WSL) Mount(ctx context.Context, opts MountOpts) (string, error) {
	args := []string{"--mount", opts.DiskPath}
	if opts.VHD {
		args = append(args, "--vhd")
	}
	if opts.Bare {
		args = append(args, "--bare")
	}
	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	if opts.Type != "" {
		args = append(args, "--type", opts.Type)
	}
	if opts.Partition > 0 {
		args = append(args, "--partition", strconv.Itoa(opts.Partition))
	}

	text, err := c.wsl(ctx, args...)
	return strings.TrimSpace(text), err
}

// Unmount detaches a mounted disk.
func (c *WSL) Unmount(ctx context.Context, diskPath string) error {
	_, err := c.wsl(ctx, "--unmount", diskPath)
	return err
}

// RunCommand executes a command line through the distribution's shell
// and returns the combined output.
func (c *WSL) RunCommand(ctx context.Context, opts RunOpts) (string, error) {
	args := []string{"--distribution", opts.Distro}
	if opts.User != "" {
		args = append(args, "--user", opts.User)
	}
	args = append(args, "--", "sh", "-c", opts.Command)

	text, err := c.wsl(ctx, args...)
	return strings.TrimSpace(text), err
}

// findEntry resolves one distribution's registry entry by name.
func (c *WSL) findEntry(ctx context.Context, name string) (regDistro, error) {
	entries, err := c.registryEntries(ctx)
	if err != nil {
		return regDistro{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return regDistro{}, fmt.Errorf("distribution %q: %w", name, domain.ErrNotFound)
}

// registryEntries dumps the Lxss key and parses out every registered
// distribution's name and install path.
func (c *WSL) registryEntries(ctx context.Context) ([]regDistro, error) {
	raw, err := c.run(ctx, "reg.exe", "query", lxssKey, "/s")
	if err != nil {
		return nil, fmt.Errorf("registry query failed: %s", firstLine(decodeOutput(raw)))
	}
	return parseRegDump(decodeOutput(raw)), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// hostPath strips the \\?\ long-path prefix some BasePath values carry.
func hostPath(p string) string {
	return strings.TrimPrefix(p, `\\?\`)
}
