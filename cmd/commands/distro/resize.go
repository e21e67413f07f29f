package distro

import (
	"context"
	"fmt"
	"regexp"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/spf13/cobra"
)

// sizeSpec matches the size syntax wsl.exe accepts, e.g. 512MB, 256GB, 1TB.
var sizeSpec = regexp.MustCompile(`^[0-9]+(MB|GB|TB)$`)

// ResizeCommand returns a cobra.Command that grows a distribution's
// virtual disk.
func ResizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resize",
		Short: "Grow a distribution's virtual disk",
		Long: `Raise the maximum size of a distribution's backing disk. The disk can
only grow; use compact to reclaim unused space. A running target is
stopped first (with confirmation).

Examples:
  wslm distro resize --distro Ubuntu --size 512GB`,
		RunE:         runResize,
		SilenceUsage: true,
	}

	cmd.Flags().String("size", "", "New maximum size, e.g. 256GB (required)")
	cmd.MarkFlagRequired("size")

	return cmd
}

type resizeArgs struct {
	Name string
	Size string
}

func runResize(cmd *cobra.Command, args []string) error {
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

	size, _ := cmd.Flags().GetString("size")
	if !sizeSpec.MatchString(size) {
		return fmt.Errorf("invalid size %q: expected a value like 512MB, 256GB, or 1TB", size)
	}

	spec := orchestrate.Spec[resizeArgs, struct{}]{
		Progress: func(a resizeArgs) string {
			return fmt.Sprintf("Resizing %s to %s...", a.Name, a.Size)
		},
		Operation: func(ctx context.Context, a resizeArgs) (struct{}, error) {
			return struct{}{}, d.client.Resize(ctx, a.Name, a.Size)
		},
		Error: func(a resizeArgs, cause error) string {
			return fmt.Sprintf("Failed to resize %s: %s", a.Name, cause.Error())
		},
	}

	ra := resizeArgs{Name: target.Name, Size: size}
	res, err := execute(cmd, d, domain.ActionResize, target, "Resizing "+target.Name+"...", spec, ra)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Resized %q to %s.\n", target.Name, size)
	return nil
}
