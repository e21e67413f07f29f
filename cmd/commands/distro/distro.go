package distro

import (
	"github.com/spf13/cobra"
)

// NewCommand returns the `wslm distro` command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distro",
		Short: "Inspect and mutate WSL distributions",
		Long: `Start, stop, clone, rename, resize, compact, and otherwise manage the
WSL distributions registered on this machine.

Actions that operate on a distribution's backing disk or registration
(clone, rename, move, export, resize, compact, sparse) cannot run while
the distribution is live. When the target is running you are asked to
stop it first; declining cancels the action with nothing changed.`,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(StartCommand())
	cmd.AddCommand(StopCommand())
	cmd.AddCommand(CloneCommand())
	cmd.AddCommand(RenameCommand())
	cmd.AddCommand(MoveCommand())
	cmd.AddCommand(ExportCommand())
	cmd.AddCommand(ResizeCommand())
	cmd.AddCommand(CompactCommand())
	cmd.AddCommand(SparseCommand())
	cmd.AddCommand(MountCommand())
	cmd.AddCommand(UnmountCommand())
	cmd.AddCommand(RunCommand())

	cmd.PersistentFlags().String("distro", "", "Distribution to act on (overrides the configured default)")

	return cmd
}
