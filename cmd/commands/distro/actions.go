package distro

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"distrolabs/wslm/internal/backend"
	"distrolabs/wslm/internal/config"
	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/history"
	"distrolabs/wslm/internal/lifecycle"
	"distrolabs/wslm/internal/orchestrate"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

// historyRetention is how long finalized action records are kept when
// the config does not say otherwise.
const historyRetention = 7 * 24 * time.Hour

// deps bundles the collaborators every distro verb needs. Built once
// per command invocation; the watcher takes one snapshot up front so
// the gate has states to decide on.
type deps struct {
	client  backend.Client
	watcher *lifecycle.Watcher
	gate    *orchestrate.Gate
	store   history.Store // nil when the local db is unavailable
	cfg     *config.Config
}

func setup(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client := backend.NewWSL()
	watcher := lifecycle.NewWatcher(client)
	if err := watcher.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to query distributions: %w", err)
	}

	tracker := orchestrate.NewTracker()
	gate := orchestrate.NewGate(tracker, watcher, confirmStop, orchestrate.StopSpec(client.Stop))

	return &deps{
		client:  client,
		watcher: watcher,
		gate:    gate,
		store:   openStore(cfg),
		cfg:     cfg,
	}, nil
}

// openStore opens the local history database and runs retention
// housekeeping. History is best-effort: a nil return (a true nil
// interface, never a typed-nil concrete store) means actions proceed
// without local tracking.
func openStore(cfg *config.Config) history.Store {
	store, err := history.Open()
	if err != nil {
		return nil
	}

	retention := historyRetention
	if cfg.HistoryRetentionDays > 0 {
		retention = time.Duration(cfg.HistoryRetentionDays) * 24 * time.Hour
	}
	store.DeleteOlderThan(retention)
	return store
}

func (d *deps) close() {
	if d.store != nil {
		d.store.Close()
	}
}

// confirmStop is the CLI-mode "Stop & Continue" affordance.
func confirmStop(ctx context.Context, target domain.Distribution, action domain.ActionID) (bool, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	confirmed := false
	field := huh.NewConfirm().
		Title(fmt.Sprintf("%q is running and must be stopped before %s.", target.Name, action)).
		Description("The distribution will be shut down, then the operation continues.").
		Affirmative("Stop & Continue").
		Negative("Cancel").
		Value(&confirmed)

	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(accessible).
		RunWithContext(ctx)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}

// resolveTarget picks the distribution a verb acts on: the --distro
// flag if set, else the configured default. The returned snapshot
// carries the watcher's last observed state.
func resolveTarget(cmd *cobra.Command, d *deps) (domain.Distribution, error) {
	name, _ := cmd.Flags().GetString("distro")
	if name == "" {
		name = d.cfg.DefaultDistro
	}
	if name == "" {
		return domain.Distribution{}, fmt.Errorf("no distribution specified: use --distro or set a default with 'wslm config set default-distro <name>'")
	}

	state := d.watcher.State(name)
	if state == domain.StateUnknown {
		return domain.Distribution{}, fmt.Errorf("distribution %q: %w", name, domain.ErrNotFound)
	}
	return domain.Distribution{Name: name, State: state}, nil
}

// execute runs one action through the gate with a spinner, records it
// in history, and converts the swallowed failure back into an error
// for cobra to print. title is the spinner text; the tracker's own
// progress messages drive the richer TUI path instead.
func execute[A, R any](cmd *cobra.Command, d *deps, action domain.ActionID, target domain.Distribution, title string, spec orchestrate.Spec[A, R], args A) (*R, error) {
	rec := history.Begin(d.store, action, target.Name)
	wasLive := target.IsRunning()

	var (
		result  *R
		outcome orchestrate.Outcome
	)
	if wasLive && action.RequiresStop() {
		// The gate will prompt, and the huh form needs the terminal to
		// itself — no spinner on this path.
		result, outcome = orchestrate.Invoke(cmd.Context(), d.gate, action, target, spec, args)
	} else {
		accessible := os.Getenv("ACCESSIBLE") != ""
		spinErr := spinner.New().
			Title(title).
			Accessible(accessible).
			Output(cmd.ErrOrStderr()).
			ActionWithErr(func(ctx context.Context) error {
				result, outcome = orchestrate.Invoke(ctx, d.gate, action, target, spec, args)
				return nil
			}).
			Run()
		if spinErr != nil {
			rec.Finalize(history.OutcomeError, spinErr.Error())
			return nil, spinErr
		}
	}

	switch outcome {
	case orchestrate.OutcomeCancelled:
		rec.Finalize(history.OutcomeCancelled, "")
		fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
		return nil, nil

	case orchestrate.OutcomeStopFailed:
		rec.StopInserted()
		rec.Finalize(history.OutcomeStopFailed, d.gate.Tracker().LastError())
		return nil, errors.New(d.gate.Tracker().LastError())
	}

	if wasLive && action.RequiresStop() {
		rec.StopInserted()
	}
	if result == nil {
		rec.Finalize(history.OutcomeError, d.gate.Tracker().LastError())
		return nil, errors.New(d.gate.Tracker().LastError())
	}

	rec.Finalize(history.OutcomeSuccess, "")
	return result, nil
}
