package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// MoveCommand returns a cobra.Command that relocates a distribution's
// backing disk.
func MoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a distribution's backing disk",
		Long: `Relocate a distribution's virtual disk to a new directory, e.g. to a
bigger drive. A running target is stopped first (with confirmation).

Examples:
  wslm distro move --distro Ubuntu --path D:\wsl\Ubuntu`,
		RunE:         runMove,
		SilenceUsage: true,
	}

	cmd.Flags().String("path", "", "New install directory (required)")
	cmd.MarkFlagRequired("path")

	return cmd
}

type moveArgs struct {
	Name string
	Path string
}

func runMove(cmd *cobra.Command, args []string) error {
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
	newPath, _ := cmd.Flags().GetString("path")

	spec := orchestrate.Spec[moveArgs, struct{}]{
		Progress: func(a moveArgs) string {
			return fmt.Sprintf("Moving %s to %s...", a.Name, a.Path)
		},
		Operation: func(ctx context.Context, a moveArgs) (struct{}, error) {
			return struct{}{}, d.client.Move(ctx, a.Name, a.Path)
		},
		Error: func(a moveArgs, cause error) string {
			return fmt.Sprintf("Failed to move %s: %s", a.Name, cause.Error())
		},
	}

	ma := moveArgs{Name: target.Name, Path: newPath}
	res, err := execute(cmd, d, domain.ActionMove, target, "Moving "+target.Name+"...", spec, ma)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %q to %s.\n", target.Name, newPath)
	return nil
}
