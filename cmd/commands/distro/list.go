package distro

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"distrolabs/wslm/internal/backend"
	"distrolabs/wslm/internal/domain"

	"github.com/spf13/cobra"
)

// ListCommand returns a cobra.Command that lists registered distributions.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered distributions",
		Long: `List the WSL distributions registered on this machine.

With --wide the listing includes the backing disk location and size,
which requires reading the registry and statting each disk.

Examples:
  wslm distro list
  wslm distro list --wide
  wslm distro list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("wide", false, "Include backing disk path and size")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	wide, _ := cmd.Flags().GetBool("wide")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	var client backend.Client = backend.NewWSL()

	var (
		distros []domain.Distribution
		err     error
	)
	if wide {
		inspector, ok := client.(backend.Inspector)
		if !ok {
			return fmt.Errorf("backend does not support detailed listing")
		}
		distros, err = inspector.ListDetailed(ctx)
	} else {
		distros, err = client.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list distributions: %w", err)
	}

	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(distros)
	}

	if len(distros) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No distributions found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	if wide {
		fmt.Fprintln(w, "NAME\tSTATE\tVERSION\tDEFAULT\tDISK\tLOCATION")
		fmt.Fprintln(w, "----\t-----\t-------\t-------\t----\t--------")
		for _, d := range distros {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				d.Name,
				d.State,
				d.Version,
				defaultMarker(d),
				formatBytes(d.DiskBytes),
				orDash(d.BasePath),
			)
		}
	} else {
		fmt.Fprintln(w, "NAME\tSTATE\tVERSION\tDEFAULT")
		fmt.Fprintln(w, "----\t-----\t-------\t-------")
		for _, d := range distros {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.Name, d.State, d.Version, defaultMarker(d))
		}
	}

	return w.Flush()
}

func defaultMarker(d domain.Distribution) string {
	if d.Default {
		return "*"
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatBytes renders a byte count using human-readable scaling.
func formatBytes(n int64) string {
	switch {
	case n <= 0:
		return "-"
	case n >= 1_000_000_000_000:
		return fmt.Sprintf("%.1fTB", float64(n)/1_000_000_000_000)
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fGB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fMB", float64(n)/1_000_000)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
