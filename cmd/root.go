package cmd

import (
	"fmt"
	"os"

	cfgcmd "distrolabs/wslm/cmd/commands/config"
	"distrolabs/wslm/cmd/commands/distro"
	"distrolabs/wslm/cmd/commands/history"
	"distrolabs/wslm/internal/tui"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "wslm",
		Short: "A CLI tool for managing WSL distributions",
		Long: `wslm is a command-line tool for managing the WSL distributions
registered on this machine. It supports starting, stopping, cloning,
renaming, and resizing distributions, with an interactive TUI for
guided workflows.

Disk-level actions (clone, rename, move, export, resize, compact,
sparse) require the target distribution to be stopped; when it is
running, wslm asks to stop it first before proceeding.

Quick start:
  wslm distro list                 # List registered distributions
  wslm distro start --distro Ubuntu
  wslm distro clone --distro Ubuntu --new-name Ubuntu-dev
  wslm ui                          # Interactive distribution manager`,
	}

	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(distro.NewCommand())
	cmd.AddCommand(history.NewCommand())
	cmd.AddCommand(uiCommand())

	return cmd
}

// uiCommand returns the "ui" command that launches the full-screen
// interactive distribution manager.
func uiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive distribution manager",
		Long: `Open a full-screen interactive view of all registered distributions.

Navigate with j/k, start or stop the selected distribution with s, and
compact its backing disk with c. Compacting a running distribution asks
to stop it first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tui.RunDistroApp(); err != nil {
				return fmt.Errorf("ui failed: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
