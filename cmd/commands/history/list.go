package history

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"distrolabs/wslm/internal/history"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent action records",
		Long: `List recent action records stored locally.

Records still marked "running" belong to invocations that were cut
short by a crash or Ctrl+C; --interrupted shows only those.

Examples:
  wslm history list
  wslm history list --limit 50
  wslm history list --interrupted
  wslm history list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of records to display")
	cmd.Flags().Bool("interrupted", false, "Show only records that were never finalized")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	interrupted, _ := cmd.Flags().GetBool("interrupted")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}

	store, err := history.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	var records []history.Record
	if interrupted {
		records, err = store.ListInterrupted()
	} else {
		records, err = store.ListRecent(limit)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history records found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tDISTRO\tACTION\tSTOPPED\tOUTCOME\tDURATION\tERROR")
	fmt.Fprintln(w, "----\t------\t------\t-------\t-------\t--------\t-----")
	for _, r := range records {
		timeStr := r.CreatedAt.Local().Format("2006-01-02 15:04:05")
		stopped := "-"
		if r.Stopped {
			stopped = "yes"
		}
		errMsg := r.ErrorMessage
		if errMsg == "" {
			errMsg = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			timeStr,
			r.Distro,
			r.Action,
			stopped,
			r.Outcome,
			formatDuration(r.DurationMs),
			errMsg,
		)
	}
	w.Flush()
	return nil
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}
