package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// StopCommand returns a cobra.Command that terminates a distribution.
func StopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running distribution",
		Long: `Terminate a distribution's VM.

Examples:
  wslm distro stop --distro Ubuntu`,
		RunE:         runStop,
		SilenceUsage: true,
	}
}

func runStop(cmd *cobra.Command, args []string) error {
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
		Progress: func(name string) string { return "Stopping " + name + "..." },
		Operation: func(ctx context.Context, name string) (struct{}, error) {
			return struct{}{}, d.client.Stop(ctx, name)
		},
		Error: func(name string, cause error) string {
			return "Failed to stop " + name + ": " + cause.Error()
		},
	}

	res, err := execute(cmd, d, domain.ActionStop, target, "Stopping "+target.Name+"...", spec, target.Name)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Distribution %q stopped.\n", target.Name)
	return nil
}
