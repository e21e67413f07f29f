package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"
	"distrolabs/wslm/internal/util"

	"github.com/spf13/cobra"
)

// RenameCommand returns a cobra.Command that renames a distribution.
func RenameCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Rename a distribution",
		Long: `Change a distribution's registration name. A running target is
stopped first (with confirmation); the registration layer cannot be
edited while the VM holds it.

Examples:
  wslm distro rename --distro Ubuntu --name Ubuntu-old`,
		RunE:         runRename,
		SilenceUsage: true,
	}

	cmd.Flags().String("name", "", "New name (required)")
	cmd.MarkFlagRequired("name")

	return cmd
}

type renameArgs struct {
	Name    string
	NewName string
}

func runRename(cmd *cobra.Command, args []string) error {
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

	newName, _ := cmd.Flags().GetString("name")
	if err := util.ValidateDistroName(newName); err != nil {
		return err
	}
	if d.watcher.State(newName) != domain.StateUnknown {
		return fmt.Errorf("a distribution named %q already exists", newName)
	}

	spec := orchestrate.Spec[renameArgs, struct{}]{
		Progress: func(a renameArgs) string {
			return fmt.Sprintf("Renaming %s to %s...", a.Name, a.NewName)
		},
		Operation: func(ctx context.Context, a renameArgs) (struct{}, error) {
			return struct{}{}, d.client.Rename(ctx, a.Name, a.NewName)
		},
		OnSuccess: func(ctx context.Context, _ struct{}) error {
			// The old name is gone; refresh so later reads see the new one.
			return d.watcher.Refresh(ctx)
		},
		Error: func(a renameArgs, cause error) string {
			return fmt.Sprintf("Failed to rename %s: %s", a.Name, cause.Error())
		},
	}

	ra := renameArgs{Name: target.Name, NewName: newName}
	res, err := execute(cmd, d, domain.ActionRename, target, "Renaming "+target.Name+"...", spec, ra)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q.\n", target.Name, newName)
	return nil
}
