package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// CompactCommand returns a cobra.Command that shrinks a
// distribution's virtual disk to its used size.
func CompactCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Compact a distribution's virtual disk",
		Long: `Shrink a distribution's backing disk on the host by releasing space
freed inside the guest. A running target is stopped first (with
confirmation); the disk cannot be compacted while attached.

This can take several minutes for large disks.

Examples:
  wslm distro compact --distro Ubuntu`,
		RunE:         runCompact,
		SilenceUsage: true,
	}
}

func runCompact(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := setup(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	target, err := resolveTarget(cmd, d)
	if err != nil {
		return err
	}

	spec := orchestrate.Spec[string, struct{}]{
		Progress: func(name string) string { return "Compacting disk of " + name + "..." },
		Operation: func(ctx context.Context, name string) (struct{}, error) {
			return struct{}{}, d.client.Compact(ctx, name)
		},
		Error: func(name string, cause error) string {
			return "Failed to compact " + name + ": " + cause.Error()
		},
	}

	res, err := execute(cmd, d, domain.ActionCompact, target, "Compacting "+target.Name+"...", spec, target.Name)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Compacted the disk of %q.\n", target.Name)
	return nil
}
