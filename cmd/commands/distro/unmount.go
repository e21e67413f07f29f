package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// UnmountCommand returns a cobra.Command that detaches a mounted disk.
func UnmountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unmount",
		Short: "Unmount a previously mounted disk",
		Long: `Detach a disk attached with 'wslm distro mount'.

Examples:
  wslm distro unmount --disk \\.\PHYSICALDRIVE2`,
		RunE:         runUnmount,
		SilenceUsage: true,
	}

	cmd.Flags().String("disk", "", "Disk path to detach (required)")
	cmd.MarkFlagRequired("disk")

	return cmd
}

func runUnmount(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := setup(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	disk, _ := cmd.Flags().GetString("disk")

	spec := orchestrate.Spec[string, struct{}]{
		Progress: func(path string) string { return "Unmounting " + path + "..." },
		Operation: func(ctx context.Context, path string) (struct{}, error) {
			return struct{}{}, d.client.Unmount(ctx, path)
		},
		Error: func(path string, cause error) string {
			return "Failed to unmount " + path + ": " + cause.Error()
		},
	}

	res, err := execute(cmd, d, domain.ActionUnmount, domain.Distribution{}, "Unmounting "+disk+"...", spec, disk)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unmounted %s.\n", disk)
	return nil
}
