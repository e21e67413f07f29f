package backend

import (
	"context"
	"os/exec"
)

// execRun is the default runFunc: spawn the program and capture
// stdout and stderr together, so failure text is available to the
// classifier even when the process exits non-zero.
func execRun(ctx context.Context, exe string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	return cmd.CombinedOutput()
}
