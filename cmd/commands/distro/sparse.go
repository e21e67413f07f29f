package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// SparseCommand returns a cobra.Command that toggles automatic disk
// space reclamation.
func SparseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sparse",
		Short: "Toggle sparse mode on a distribution's disk",
		Long: `Enable or disable sparse mode, under which the backing disk
automatically returns freed space to the host. A running target is
stopped first (with confirmation).

Examples:
  wslm distro sparse --distro Ubuntu
  wslm distro sparse --distro Ubuntu --disable`,
		RunE:         runSparse,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("disable", false, "Turn sparse mode off instead of on")

	return cmd
}

type sparseArgs struct {
	Name string
	On   bool
}

func runSparse(cmd *cobra.Command, args []string) error {
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
	disable, _ := cmd.Flags().GetBool("disable")

	spec := orchestrate.Spec[sparseArgs, struct{}]{
		Progress: func(a sparseArgs) string {
			if a.On {
				return "Enabling sparse mode on " + a.Name + "..."
			}
			return "Disabling sparse mode on " + a.Name + "..."
		},
		Operation: func(ctx context.Context, a sparseArgs) (struct{}, error) {
			return struct{}{}, d.client.SetSparse(ctx, a.Name, a.On)
		},
		Error: func(a sparseArgs, cause error) string {
			return fmt.Sprintf("Failed to change sparse mode on %s: %s", a.Name, cause.Error())
		},
	}

	sa := sparseArgs{Name: target.Name, On: !disable}
	res, err := execute(cmd, d, domain.ActionSparse, target, "Updating sparse mode...", spec, sa)
	if err != nil || res == nil {
		return err
	}

	mode := "enabled"
	if disable {
		mode = "disabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sparse mode %s on %q.\n", mode, target.Name)
	return nil
}
