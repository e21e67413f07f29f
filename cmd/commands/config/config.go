package config

import (
	"distrolabs/wslm/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wslm configuration",
		Long: "View and modify persistent wslm settings.\n\n" +
			"Configuration is stored at ~/.config/wslm/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
