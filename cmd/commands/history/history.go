package history

import "github.com/spf13/cobra"

// NewCommand returns the "history" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "View and manage action history",
		Long: "View a local log of orchestrated distribution actions and prune old entries.\n\n" +
			"History is stored locally in ~/.config/wslm/history.db.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
