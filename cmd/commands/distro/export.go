package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// ExportCommand returns a cobra.Command that exports a distribution
// to a tar archive.
func ExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a distribution to a tar archive",
		Long: `Write a distribution's entire filesystem to a tar archive, suitable
for backup or for importing on another machine. A running target is
stopped first (with confirmation) so the archive is consistent.

Examples:
  wslm distro export --distro Ubuntu --output C:\backups\ubuntu.tar`,
		RunE:         runExport,
		SilenceUsage: true,
	}

	cmd.Flags().String("output", "", "Path of the tar archive to write (required)")
	cmd.MarkFlagRequired("output")

	return cmd
}

type exportArgs struct {
	Name    string
	TarPath string
}

func runExport(cmd *cobra.Command, args []string) error {
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
	output, _ := cmd.Flags().GetString("output")

	spec := orchestrate.Spec[exportArgs, struct{}]{
		Progress: func(a exportArgs) string {
			return fmt.Sprintf("Exporting %s to %s...", a.Name, a.TarPath)
		},
		Operation: func(ctx context.Context, a exportArgs) (struct{}, error) {
			return struct{}{}, d.client.Export(ctx, a.Name, a.TarPath)
		},
		Error: func(a exportArgs, cause error) string {
			return fmt.Sprintf("Failed to export %s: %s", a.Name, cause.Error())
		},
	}

	ea := exportArgs{Name: target.Name, TarPath: output}
	res, err := execute(cmd, d, domain.ActionExport, target, "Exporting "+target.Name+"...", spec, ea)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s.\n", target.Name, output)
	return nil
}
