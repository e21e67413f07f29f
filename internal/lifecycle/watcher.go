// Package lifecycle maintains a polled snapshot of every
// distribution's state. The orchestration gate reads the snapshot
// synchronously at decision time; it never blocks on a live query.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"distrolabs/wslm/internal/domain"
	"distrolabs/wslm/internal/retry"
)

// pollInterval is the delay between successive polls. A variable so
// tests can shorten it.
var pollInterval = 3 * time.Second

// maxTransientErrors is how many consecutive failed polls the loop
// tolerates before giving up. Brief backend hiccups should not kill
// the watcher.
const maxTransientErrors = 3

// Lister is the slice of the backend the watcher needs.
type Lister interface {
	List(ctx context.Context) ([]domain.Distribution, error)
}

// Watcher polls the backend and serves state snapshots. It implements
// orchestrate.StateReader.
type Watcher struct {
	lister Lister

	mu      sync.RWMutex
	states  map[string]domain.State
	distros []domain.Distribution
	polled  time.Time
}

// NewWatcher returns a watcher with an empty snapshot. Callers usually
// Refresh once before first use so State has something to answer with.
func NewWatcher(lister Lister) *Watcher {
	return &Watcher{
		lister: lister,
		states: make(map[string]domain.State),
	}
}

// State returns the last observed state for the named distribution,
// or StateUnknown when it has never been seen.
func (w *Watcher) State(name string) domain.State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if s, ok := w.states[name]; ok {
		return s
	}
	return domain.StateUnknown
}

// Snapshot returns a copy of the last full listing and when it was
// taken.
func (w *Watcher) Snapshot() ([]domain.Distribution, time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.Distribution, len(w.distros))
	copy(out, w.distros)
	return out, w.polled
}

// Refresh performs one poll, retrying transient backend failures, and
// replaces the snapshot on success. Distributions absent from the new
// listing drop out of the state map — they read as Unknown afterwards.
func (w *Watcher) Refresh(ctx context.Context) error {
	var distros []domain.Distribution
	err := retry.Do(ctx, retry.DefaultConfig(), nil, func() error {
		var listErr error
		distros, listErr = w.lister.List(ctx)
		return listErr
	})
	if err != nil {
		return err
	}

	states := make(map[string]domain.State, len(distros))
	now := time.Now()
	for i := range distros {
		distros[i].LastSeen = now
		states[distros[i].Name] = distros[i].State
	}

	w.mu.Lock()
	w.states = states
	w.distros = distros
	w.polled = now
	w.mu.Unlock()
	return nil
}

// Run polls until ctx ends, tolerating up to maxTransientErrors
// consecutive failures. The stale snapshot stays readable while polls
// fail; callers just see increasingly old data.
func (w *Watcher) Run(ctx context.Context) error {
	consecutive := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}

		if err := w.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			consecutive++
			if consecutive >= maxTransientErrors {
				return err
			}
			continue
		}
		consecutive = 0
	}
}
