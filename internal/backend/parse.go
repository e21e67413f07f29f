package backend

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"distrolabs/wslm/internal/domain"

	"golang.org/x/text/encoding/unicode"
)

// decodeOutput converts raw wsl.exe output to a UTF-8 string.
//
// wsl.exe writes UTF-16LE to pipes (with or without a BOM depending on
// the subcommand), while reg.exe and diskpart write the ANSI codepage.
// The heuristic: if the byte stream looks 16-bit (NUL in the first few
// bytes), decode as UTF-16LE, otherwise pass it through.
func decodeOutput(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	probe := raw
	if len(probe) > 8 {
		probe = probe[:8]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(raw); err == nil {
			raw = out
		}
	}

	return strings.ReplaceAll(string(raw), "\r\n", "\n")
}

// parseList parses `wsl.exe --list --verbose` output:
//
//	  NAME              STATE           VERSION
//	* Ubuntu            Running         2
//	  Debian            Stopped         2
func parseList(text string) []domain.Distribution {
	var distros []domain.Distribution

	sc := bufio.NewScanner(strings.NewReader(text))
	first := true
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if first {
			first = false // header row
			continue
		}

		isDefault := false
		if strings.HasPrefix(line, "*") {
			isDefault = true
			line = line[1:]
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		version, _ := strconv.Atoi(fields[len(fields)-1])
		state := fields[len(fields)-2]
		name := strings.Join(fields[:len(fields)-2], " ")

		distros = append(distros, domain.Distribution{
			Name:    name,
			State:   mapState(state),
			Version: version,
			Default: isDefault,
		})
	}

	return distros
}

// mapState maps wsl.exe state words onto the domain lifecycle states.
// Installing, converting and uninstalling all land on Transitioning:
// the orchestration layer treats them as live.
func mapState(s string) domain.State {
	switch strings.ToLower(s) {
	case "running":
		return domain.StateRunning
	case "stopped":
		return domain.StateStopped
	case "installing", "converting", "uninstalling":
		return domain.StateTransitioning
	}
	return domain.StateUnknown
}

// regDistro is one distribution's entry under the Lxss registry key.
type regDistro struct {
	// Key is the full registry key path, ending in the GUID.
	Key string

	// Name is the DistributionName value.
	Name string

	// BasePath is the install directory value, possibly carrying a
	// \\?\ long-path prefix.
	BasePath string
}

// GUID returns the trailing component of the registry key.
func (r regDistro) GUID() string {
	if i := strings.LastIndexByte(r.Key, '\\'); i >= 0 {
		return r.Key[i+1:]
	}
	return r.Key
}

// parseRegDump parses `reg.exe query ...\Lxss /s` output. The dump
// alternates between key-path lines and indented "name  type  value"
// lines belonging to the key above them:
//
//	HKEY_CURRENT_USER\...\Lxss\{guid}
//	    DistributionName    REG_SZ    Ubuntu
//	    BasePath            REG_SZ    C:\wsl\Ubuntu
func parseRegDump(text string) []regDistro {
	var (
		entries []regDistro
		current *regDistro
	)

	flush := func() {
		if current != nil && current.Name != "" {
			entries = append(entries, *current)
		}
		current = nil
	}

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		// Key-path lines are not indented.
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			if strings.HasPrefix(trimmed, "HKEY_") {
				flush()
				current = &regDistro{Key: trimmed}
			}
			continue
		}

		if current == nil {
			continue
		}
		fields := strings.SplitN(trimmed, "REG_SZ", 2)
		if len(fields) != 2 {
			continue
		}
		value := strings.TrimSpace(fields[1])
		switch strings.TrimSpace(fields[0]) {
		case "DistributionName":
			current.Name = value
		case "BasePath":
			current.BasePath = value
		}
	}
	flush()

	return entries
}

// classify wraps well-known wsl.exe failure text with domain sentinels
// so callers can branch without parsing output themselves.
func classify(output string) error {
	lowered := strings.ToLower(output)
	switch {
	case strings.Contains(output, "WSL_E_DISTRO_NOT_FOUND"),
		strings.Contains(lowered, "no distribution with the supplied name"):
		return domain.ErrNotFound
	case strings.Contains(output, "WSL_E_VM_MODE_INVALID_STATE"),
		strings.Contains(lowered, "is currently in use"),
		strings.Contains(lowered, "another operation"):
		return domain.ErrBusy
	case strings.Contains(output, "WSL_E_WSL_OPTIONAL_COMPONENT_REQUIRED"),
		strings.Contains(lowered, "windows subsystem for linux has no installed distributions"),
		strings.Contains(lowered, "is not recognized"):
		return domain.ErrBackendUnavailable
	}
	return nil
}
