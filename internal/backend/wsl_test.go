package backend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"distrolabs/wslm/internal/domain"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/unicode"
)

// utf16le encodes a string the way wsl.exe writes to a pipe.
func utf16le(t *testing.T, s string) []byte {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes([]byte(strings.ReplaceAll(s, "\n", "\r\n")))
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return out
}

// fakeRunner records every spawned command and plays back canned
// responses keyed by the subcommand (first argument).
type fakeRunner struct {
	calls   [][]string
	output  map[string][]byte
	failOn  string
	failErr error
	failOut []byte
}

func (f *fakeRunner) run(ctx context.Context, exe string, args ...string) ([]byte, error) {
	call := append([]string{exe}, args...)
	f.calls = append(f.calls, call)

	if f.failOn != "" && len(args) > 0 && args[0] == f.failOn {
		return f.failOut, f.failErr
	}
	if len(args) > 0 {
		if out, ok := f.output[args[0]]; ok {
			return out, nil
		}
	}
	return nil, nil
}

func newFakeWSL(f *fakeRunner) *WSL {
	return &WSL{run: f.run}
}

const listFixture = `  NAME              STATE           VERSION
* Ubuntu            Running         2
  Debian            Stopped         2
  Alpine Edge       Installing      2
`

func TestList_ParsesVerboseOutput(t *testing.T) {
	f := &fakeRunner{output: map[string][]byte{
		"--list": utf16le(t, listFixture),
	}}
	c := newFakeWSL(f)

	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []domain.Distribution{
		{Name: "Ubuntu", State: domain.StateRunning, Version: 2, Default: true},
		{Name: "Debian", State: domain.StateStopped, Version: 2},
		{Name: "Alpine Edge", State: domain.StateTransitioning, Version: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("distribution list mismatch (-want +got):\n%s", diff)
	}
}

func TestList_NotFoundClassification(t *testing.T) {
	f := &fakeRunner{
		failOn:  "--terminate",
		failErr: errors.New("exit status 1"),
		failOut: utf16le(t, "There is no distribution with the supplied name.\nError code: Wsl/Service/WSL_E_DISTRO_NOT_FOUND\n"),
	}
	c := newFakeWSL(f)

	err := c.Stop(context.Background(), "Nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStop_CommandLine(t *testing.T) {
	f := &fakeRunner{}
	c := newFakeWSL(f)

	if err := c.Stop(context.Background(), "Ubuntu"); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	want := [][]string{{"wsl.exe", "--terminate", "Ubuntu"}}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("spawned commands mismatch (-want +got):\n%s", diff)
	}
}

func TestClone_ExportsThenImports(t *testing.T) {
	f := &fakeRunner{}
	c := newFakeWSL(f)

	err := c.Clone(context.Background(), CloneOpts{
		Source:      "Ubuntu",
		NewName:     "Ubuntu-dev",
		InstallPath: `C:\wsl\Ubuntu-dev`,
	})
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	if len(f.calls) != 2 {
		t.Fatalf("expected 2 spawned commands, got %d: %v", len(f.calls), f.calls)
	}
	if f.calls[0][1] != "--export" || f.calls[0][2] != "Ubuntu" {
		t.Errorf("first call = %v, want an export of Ubuntu", f.calls[0])
	}
	if f.calls[1][1] != "--import" || f.calls[1][2] != "Ubuntu-dev" {
		t.Errorf("second call = %v, want an import as Ubuntu-dev", f.calls[1])
	}
	// The temp archive flows from the export to the import.
	if f.calls[0][3] != f.calls[1][4] {
		t.Errorf("export wrote %q but import read %q", f.calls[0][3], f.calls[1][4])
	}
}

func TestClone_ExportFailureSkipsImport(t *testing.T) {
	f := &fakeRunner{
		failOn:  "--export",
		failErr: errors.New("exit status 1"),
		failOut: utf16le(t, "Access is denied.\n"),
	}
	c := newFakeWSL(f)

	err := c.Clone(context.Background(), CloneOpts{Source: "Ubuntu", NewName: "X", InstallPath: `C:\wsl\X`})
	if err == nil {
		t.Fatal("expected clone to fail")
	}
	if len(f.calls) != 1 {
		t.Errorf("import attempted after failed export: %v", f.calls)
	}
}

func TestMount_CommandLine(t *testing.T) {
	tests := []struct {
		name string
		opts MountOpts
		want []string
	}{
		{
			name: "physical disk",
			opts: MountOpts{DiskPath: `\\.\PHYSICALDRIVE2`},
			want: []string{"wsl.exe", "--mount", `\\.\PHYSICALDRIVE2`},
		},
		{
			name: "vhd bare",
			opts: MountOpts{DiskPath: `C:\disks\data.vhdx`, VHD: true, Bare: true},
			want: []string{"wsl.exe", "--mount", `C:\disks\data.vhdx`, "--vhd", "--bare"},
		},
		{
			name: "named partition with type",
			opts: MountOpts{DiskPath: `\\.\PHYSICALDRIVE1`, Name: "data", Type: "xfs", Partition: 3},
			want: []string{"wsl.exe", "--mount", `\\.\PHYSICALDRIVE1`, "--name", "data", "--type", "xfs", "--partition", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRunner{}
			c := newFakeWSL(f)

			if _, err := c.Mount(context.Background(), tt.opts); err != nil {
				t.Fatalf("Mount failed: %v", err)
			}
			if diff := cmp.Diff([][]string{tt.want}, f.calls); diff != "" {
				t.Errorf("spawned commands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunCommand_UsesShell(t *testing.T) {
	f := &fakeRunner{}
	c := newFakeWSL(f)

	_, err := c.RunCommand(context.Background(), RunOpts{
		Distro:  "Ubuntu",
		User:    "deploy",
		Command: "apt-get update && apt-get -y upgrade",
	})
	if err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}

	want := [][]string{{
		"wsl.exe", "--distribution", "Ubuntu", "--user", "deploy",
		"--", "sh", "-c", "apt-get update && apt-get -y upgrade",
	}}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("spawned commands mismatch (-want +got):\n%s", diff)
	}
}

const regFixture = `
HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Lxss
    DefaultDistribution    REG_SZ    {aaaa-bbbb}

HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Lxss\{aaaa-bbbb}
    DistributionName    REG_SZ    Ubuntu
    BasePath            REG_SZ    \\?\C:\wsl\Ubuntu

HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Lxss\{cccc-dddd}
    DistributionName    REG_SZ    Debian
    BasePath            REG_SZ    C:\wsl\Debian
`

func TestParseRegDump(t *testing.T) {
	got := parseRegDump(regFixture)

	want := []regDistro{
		{
			Key:      `HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Lxss\{aaaa-bbbb}`,
			Name:     "Ubuntu",
			BasePath: `\\?\C:\wsl\Ubuntu`,
		},
		{
			Key:      `HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Lxss\{cccc-dddd}`,
			Name:     "Debian",
			BasePath: `C:\wsl\Debian`,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("registry entries mismatch (-want +got):\n%s", diff)
	}

	if guid := got[0].GUID(); guid != "{aaaa-bbbb}" {
		t.Errorf("GUID() = %q, want {aaaa-bbbb}", guid)
	}
}

func TestRename_RewritesRegistryValue(t *testing.T) {
	f := &fakeRunner{output: map[string][]byte{
		"query": []byte(regFixture),
	}}
	c := newFakeWSL(f)

	if err := c.Rename(context.Background(), "Debian", "Debian-old"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	last := f.calls[len(f.calls)-1]
	want := []string{
		"reg.exe", "add",
		`HKEY_CURRENT_USER\Software\Microsoft\Windows\CurrentVersion\Lxss\{cccc-dddd}`,
		"/v", "DistributionName", "/t", "REG_SZ", "/d", "Debian-old", "/f",
	}
	if diff := cmp.Diff(want, last); diff != "" {
		t.Errorf("reg add command mismatch (-want +got):\n%s", diff)
	}
}

func TestRename_UnknownDistribution(t *testing.T) {
	f := &fakeRunner{output: map[string][]byte{
		"query": []byte(regFixture),
	}}
	c := newFakeWSL(f)

	err := c.Rename(context.Background(), "NoSuch", "X")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMapState(t *testing.T) {
	tests := []struct {
		in   string
		want domain.State
	}{
		{"Running", domain.StateRunning},
		{"Stopped", domain.StateStopped},
		{"Installing", domain.StateTransitioning},
		{"Converting", domain.StateTransitioning},
		{"Uninstalling", domain.StateTransitioning},
		{"Whatever", domain.StateUnknown},
	}
	for _, tt := range tests {
		if got := mapState(tt.in); got != tt.want {
			t.Errorf("mapState(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeOutput_PassesThroughUTF8(t *testing.T) {
	got := decodeOutput([]byte("plain text\r\nsecond line\r\n"))
	want := "plain text\nsecond line\n"
	if got != want {
		t.Errorf("decodeOutput = %q, want %q", got, want)
	}
}
