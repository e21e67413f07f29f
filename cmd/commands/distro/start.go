package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/backend"
	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// StartCommand returns a cobra.Command that boots a distribution.
func StartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a distribution",
		Long: `Boot a stopped distribution's VM.

If a startup command is configured (wslm config set startup-command),
it runs inside the distribution once it is up.

Examples:
  wslm distro start --distro Ubuntu`,
		RunE:         runStart,
		SilenceUsage: true,
	}
}

func runStart(cmd *cobra.Command, args []string) error {
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

	startup := d.cfg.StartupCommand
	spec := orchestrate.Spec[string, struct{}]{
		Progress: func(name string) string { return "Starting " + name + "..." },
		Operation: func(ctx context.Context, name string) (struct{}, error) {
			return struct{}{}, d.client.Start(ctx, name)
		},
		OnSuccess: func(ctx context.Context, _ struct{}) error {
			if startup == "" {
				return nil
			}
			_, err := d.client.RunCommand(ctx, backend.RunOpts{Distro: target.Name, Command: startup})
			if err != nil {
				return fmt.Errorf("startup command failed: %w", err)
			}
			return nil
		},
		Error: func(name string, cause error) string {
			return "Failed to start " + name + ": " + cause.Error()
		},
	}

	res, err := execute(cmd, d, domain.ActionStart, target, "Starting "+target.Name+"...", spec, target.Name)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Distribution %q started.\n", target.Name)
	return nil
}
