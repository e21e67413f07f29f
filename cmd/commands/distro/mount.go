package distro

import (
	"context"
	"fmt"

	"distrolabs/wslm/internal/backend"
	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// MountCommand returns a cobra.Command that attaches a host disk to WSL.
func MountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount",
		Short: "Mount a host disk into WSL",
		Long: `Attach a physical disk or VHD file so it is visible to all running
distributions under /mnt/wsl.

Mounting affects the shared VM, not one distribution, so no stop
precondition applies.

Examples:
  wslm distro mount --disk \\.\PHYSICALDRIVE2
  wslm distro mount --disk D:\disks\data.vhdx --vhd --name data
  wslm distro mount --disk \\.\PHYSICALDRIVE1 --partition 2 --type xfs`,
		RunE:         runMount,
		SilenceUsage: true,
	}

	cmd.Flags().String("disk", "", "Disk path: \\\\.\\PHYSICALDRIVE<n> or a VHD file (required)")
	cmd.Flags().Bool("vhd", false, "The disk path is a VHD file")
	cmd.Flags().Bool("bare", false, "Attach without mounting a filesystem")
	cmd.Flags().String("name", "", "Mount point name under /mnt/wsl")
	cmd.Flags().String("type", "", "Filesystem type (default ext4)")
	cmd.Flags().Int("partition", 0, "Partition index to mount (0 = whole disk)")
	cmd.MarkFlagRequired("disk")

	return cmd
}

func runMount(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := setup(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	disk, _ := cmd.Flags().GetString("disk")
	vhd, _ := cmd.Flags().GetBool("vhd")
	bare, _ := cmd.Flags().GetBool("bare")
	name, _ := cmd.Flags().GetString("name")
	fsType, _ := cmd.Flags().GetString("type")
	partition, _ := cmd.Flags().GetInt("partition")

	spec := orchestrate.Spec[backend.MountOpts, string]{
		Progress: func(o backend.MountOpts) string { return "Mounting " + o.DiskPath + "..." },
		Operation: func(ctx context.Context, o backend.MountOpts) (string, error) {
			return d.client.Mount(ctx, o)
		},
		Error: func(o backend.MountOpts, cause error) string {
			return "Failed to mount " + o.DiskPath + ": " + cause.Error()
		},
	}

	opts := backend.MountOpts{
		DiskPath:  disk,
		VHD:       vhd,
		Bare:      bare,
		Name:      name,
		Type:      fsType,
		Partition: partition,
	}
	// Mount has no per-distribution target; the gate sees a zero
	// target and runs directly.
	response, err := execute(cmd, d, domain.ActionMount, domain.Distribution{}, "Mounting "+disk+"...", spec, opts)
	if err != nil || response == nil {
		return err
	}

	if *response != "" {
		fmt.Fprintln(cmd.OutOrStdout(), *response)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Mounted %s.\n", disk)
	}
	return nil
}
