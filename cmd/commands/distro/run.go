package distro

import (
	"context"
	"fmt"
	"strings"

	"distrolabs/wslm/internal/backend"
	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// RunCommand returns a cobra.Command that executes a command inside a
// distribution.
func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -- <command>",
		Short: "Run a command inside a distribution",
		Long: `Execute a command line through the distribution's shell and print
its output. A stopped distribution boots on demand; no precondition
applies.

Examples:
  wslm distro run --distro Ubuntu -- uname -a
  wslm distro run --distro Ubuntu --user root -- apt-get update`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runRun,
		SilenceUsage: true,
	}

	cmd.Flags().String("user", "", "User to run as (default: the distribution's default user)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
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

	user, _ := cmd.Flags().GetString("user")
	command := strings.Join(args, " ")

	spec := orchestrate.Spec[backend.RunOpts, string]{
		Progress: func(o backend.RunOpts) string {
			return "Running command in " + o.Distro + "..."
		},
		Operation: func(ctx context.Context, o backend.RunOpts) (string, error) {
			return d.client.RunCommand(ctx, o)
		},
		Error: func(o backend.RunOpts, cause error) string {
			return fmt.Sprintf("Command failed in %s: %s", o.Distro, cause.Error())
		},
	}

	opts := backend.RunOpts{Distro: target.Name, User: user, Command: command}
	output, err := execute(cmd, d, domain.ActionRun, target, "Running command...", spec, opts)
	if err != nil || output == nil {
		return err
	}

	if *output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), *output)
	}
	return nil
}
