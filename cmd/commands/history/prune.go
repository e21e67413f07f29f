package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"distrolabs/wslm/internal/history"

	"github.com/spf13/cobra"
)

func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history records older than a duration",
		Long: `Delete finalized history records older than a duration.

Records still marked "running" are never pruned.

Examples:
  wslm history prune --older-than 30d
  wslm history prune --older-than 72h`,
		RunE:         runPrune,
		SilenceUsage: true,
	}

	cmd.Flags().String("older-than", "", "Remove records older than this duration (e.g. 30d, 72h)")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	olderThanRaw, _ := cmd.Flags().GetString("older-than")
	olderThanRaw = strings.TrimSpace(olderThanRaw)
	if olderThanRaw == "" {
		return fmt.Errorf("--older-than is required")
	}

	olderThan, err := parseDuration(olderThanRaw)
	if err != nil {
		return err
	}

	store, err := history.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.DeleteOlderThan(olderThan)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history record(s).\n", removed)
	return nil
}

func parseDuration(input string) (time.Duration, error) {
	if before, ok := strings.CutSuffix(input, "d"); ok {
		days, err := strconv.Atoi(before)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", input)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", input)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}
