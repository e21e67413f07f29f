package distro

import (
	"context"
	"fmt"
	"path/filepath"

	"distrolabs/wslm/internal/backend"
	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/orchestrate"
	"distrolabs/wslm/internal/util"

	"github.com/spf13/cobra"
)

// CloneCommand returns a cobra.Command that duplicates a distribution.
func CloneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone a distribution under a new name",
		Long: `Duplicate a distribution, filesystem and all, under a new registration
name. A running source is stopped first (with confirmation).

The clone's backing disk is placed under --path, or under the
configured install directory (wslm config set install-dir).

Examples:
  wslm distro clone --distro Ubuntu --name Ubuntu-dev
  wslm distro clone --distro Ubuntu --name scratch --path D:\wsl\scratch`,
		RunE:         runClone,
		SilenceUsage: true,
	}

	cmd.Flags().String("name", "", "Name for the clone (required)")
	cmd.Flags().String("path", "", "Install directory for the clone's backing disk")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runClone(cmd *cobra.Command, args []string) error {
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

	newName, _ := cmd.Flags().GetString("name")
	if err := util.ValidateDistroName(newName); err != nil {
		return err
	}
	if d.watcher.State(newName) != domain.StateUnknown {
		return fmt.Errorf("a distribution named %q already exists", newName)
	}

	installPath, _ := cmd.Flags().GetString("path")
	if installPath == "" {
		if d.cfg.InstallDir == "" {
			return fmt.Errorf("no install path: use --path or set a default with 'wslm config set install-dir <dir>'")
		}
		installPath = filepath.Join(d.cfg.InstallDir, newName)
	}

	spec := orchestrate.Spec[backend.CloneOpts, struct{}]{
		Progress: func(o backend.CloneOpts) string {
			return fmt.Sprintf("Cloning %s as %s...", o.Source, o.NewName)
		},
		Operation: func(ctx context.Context, o backend.CloneOpts) (struct{}, error) {
			return struct{}{}, d.client.Clone(ctx, o)
		},
		Error: func(o backend.CloneOpts, cause error) string {
			return fmt.Sprintf("Failed to clone %s: %s", o.Source, cause.Error())
		},
	}

	opts := backend.CloneOpts{Source: target.Name, NewName: newName, InstallPath: installPath}
	res, err := execute(cmd, d, domain.ActionClone, target, "Cloning "+target.Name+"...", spec, opts)
	if err != nil || res == nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cloned %q as %q (%s).\n", target.Name, newName, installPath)
	return nil
}
