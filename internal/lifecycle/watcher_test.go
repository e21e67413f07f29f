package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"distrolabs/wslm/internal/domain"
)

// fakeLister plays back one listing per call, then repeats the last.
type fakeLister struct {
	listings [][]domain.Distribution
	err      error
	calls    int
}

func (f *fakeLister) List(ctx context.Context) ([]domain.Distribution, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.listings) {
		idx = len(f.listings) - 1
	}
	return f.listings[idx], nil
}

func TestWatcher_UnknownBeforeFirstRefresh(t *testing.T) {
	w := NewWatcher(&fakeLister{})
	if got := w.State("Ubuntu"); got != domain.StateUnknown {
		t.Errorf("State before refresh = %v, want unknown", got)
	}
}

func TestWatcher_RefreshPopulatesStates(t *testing.T) {
	w := NewWatcher(&fakeLister{listings: [][]domain.Distribution{{
		{Name: "Ubuntu", State: domain.StateRunning},
		{Name: "Debian", State: domain.StateStopped},
	}}})

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if got := w.State("Ubuntu"); got != domain.StateRunning {
		t.Errorf("Ubuntu state = %v, want running", got)
	}
	if got := w.State("Debian"); got != domain.StateStopped {
		t.Errorf("Debian state = %v, want stopped", got)
	}
	if got := w.State("Alpine"); got != domain.StateUnknown {
		t.Errorf("unseen distribution state = %v, want unknown", got)
	}

	distros, polled := w.Snapshot()
	if len(distros) != 2 {
		t.Errorf("snapshot has %d distributions, want 2", len(distros))
	}
	if polled.IsZero() {
		t.Error("snapshot timestamp not set")
	}
}

func TestWatcher_UnlistedDistributionDropsToUnknown(t *testing.T) {
	f := &fakeLister{listings: [][]domain.Distribution{
		{{Name: "Ubuntu", State: domain.StateRunning}},
		{}, // unregistered between polls
	}}
	w := NewWatcher(f)

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	if got := w.State("Ubuntu"); got != domain.StateUnknown {
		t.Errorf("state after disappearance = %v, want unknown", got)
	}
}

func TestWatcher_RefreshErrorKeepsOldSnapshot(t *testing.T) {
	f := &fakeLister{listings: [][]domain.Distribution{
		{{Name: "Ubuntu", State: domain.StateRunning}},
	}}
	w := NewWatcher(f)
	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	f.err = errors.New("wsl.exe exploded")
	if err := w.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}

	// The previous snapshot survives the failed poll.
	if got := w.State("Ubuntu"); got != domain.StateRunning {
		t.Errorf("state after failed refresh = %v, want running (stale)", got)
	}
}

func TestWatcher_RefreshRetriesBusy(t *testing.T) {
	f := &busyThenOK{}
	w := NewWatcher(f)

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh should have recovered from a busy backend: %v", err)
	}
	if f.calls < 2 {
		t.Errorf("lister called %d times, want a retry", f.calls)
	}
	if got := w.State("Ubuntu"); got != domain.StateRunning {
		t.Errorf("state = %v, want running", got)
	}
}

type busyThenOK struct{ calls int }

func (b *busyThenOK) List(ctx context.Context) ([]domain.Distribution, error) {
	b.calls++
	if b.calls == 1 {
		return nil, domain.ErrBusy
	}
	return []domain.Distribution{{Name: "Ubuntu", State: domain.StateRunning}}, nil
}

// overridePollInterval shortens the poll loop for the duration of one test.
func overridePollInterval(t *testing.T, d time.Duration) {
	t.Helper()
	old := pollInterval
	pollInterval = d
	t.Cleanup(func() { pollInterval = old })
}

func TestWatcher_RunKeepsSnapshotCurrent(t *testing.T) {
	overridePollInterval(t, time.Millisecond)

	f := &fakeLister{listings: [][]domain.Distribution{
		{{Name: "Ubuntu", State: domain.StateStopped}},
		{{Name: "Ubuntu", State: domain.StateRunning}},
	}}
	w := NewWatcher(f)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for w.State("Ubuntu") != domain.StateRunning {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("state never reached running, still %v", w.State("Ubuntu"))
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestWatcher_RunGivesUpAfterConsecutiveFailures(t *testing.T) {
	overridePollInterval(t, time.Millisecond)

	// A permanent error skips the per-refresh retry, so the loop's own
	// consecutive-failure budget is what ends it.
	permanent := errors.New("wsl.exe missing")
	w := NewWatcher(&fakeLister{err: permanent})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := w.Run(ctx)
	if !errors.Is(err, permanent) {
		t.Fatalf("Run returned %v, want the backend error", err)
	}
}
