package orchestrate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordProgress wires a tracker observer that appends every progress
// slot value as it changes.
func recordProgress(t *Tracker) *[]string {
	var seq []string
	last := t.ActionInProgress()
	t.Notify(func(s Snapshot) {
		if s.ActionInProgress != last {
			seq = append(seq, s.ActionInProgress)
			last = s.ActionInProgress
		}
	})
	return &seq
}

func TestRun_SuccessReturnsValue(t *testing.T) {
	tr := NewTracker()
	seq := recordProgress(tr)

	spec := Spec[struct{}, int]{
		Progress: Static[struct{}]("Loading..."),
		Operation: func(ctx context.Context, _ struct{}) (int, error) {
			return 42, nil
		},
		Error: StaticError[struct{}]("should not appear"),
	}

	got := Run(context.Background(), tr, spec, struct{}{})
	if got == nil || *got != 42 {
		t.Fatalf("expected result 42, got %v", got)
	}

	want := []string{"Loading...", ""}
	if diff := cmp.Diff(want, *seq); diff != "" {
		t.Errorf("progress sequence mismatch (-want +got):\n%s", diff)
	}
	if tr.LastError() != "" {
		t.Errorf("error slot mutated on success: %q", tr.LastError())
	}
}

func TestRun_FailureWritesErrorSlot(t *testing.T) {
	tr := NewTracker()
	seq := recordProgress(tr)

	spec := Spec[struct{}, int]{
		Progress: Static[struct{}]("Working..."),
		Operation: func(ctx context.Context, _ struct{}) (int, error) {
			return 0, errors.New("boom")
		},
		Error: func(_ struct{}, cause error) string {
			return "Failed: " + cause.Error()
		},
	}

	got := Run(context.Background(), tr, spec, struct{}{})
	if got != nil {
		t.Fatalf("expected nil result on failure, got %v", *got)
	}
	if tr.LastError() != "Failed: boom" {
		t.Errorf("error slot = %q, want %q", tr.LastError(), "Failed: boom")
	}

	// Progress still transitions message -> cleared, failure or not.
	want := []string{"Working...", ""}
	if diff := cmp.Diff(want, *seq); diff != "" {
		t.Errorf("progress sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SuccessLeavesPreviousErrorVisible(t *testing.T) {
	tr := NewTracker()
	tr.fail("stale error from an earlier action")

	spec := Spec[struct{}, struct{}]{
		Progress: Static[struct{}]("Working..."),
		Operation: func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, nil
		},
		Error: StaticError[struct{}]("unused"),
	}

	if got := Run(context.Background(), tr, spec, struct{}{}); got == nil {
		t.Fatal("expected success")
	}

	// No clear-on-start, no clear-on-success: the stale error stays
	// until the next failure overwrites it.
	if tr.LastError() != "stale error from an earlier action" {
		t.Errorf("error slot = %q, want stale error preserved", tr.LastError())
	}
}

func TestRun_ProgressVisibleBeforeOperationStarts(t *testing.T) {
	tr := NewTracker()

	var seenDuringOp string
	spec := Spec[string, struct{}]{
		Progress: func(name string) string { return "Cloning " + name + "..." },
		Operation: func(ctx context.Context, _ string) (struct{}, error) {
			seenDuringOp = tr.ActionInProgress()
			return struct{}{}, nil
		},
		Error: StaticError[string]("unused"),
	}

	Run(context.Background(), tr, spec, "Ubuntu")

	if seenDuringOp != "Cloning Ubuntu..." {
		t.Errorf("operation observed progress %q, want it set before the operation runs", seenDuringOp)
	}
	if tr.ActionInProgress() != "" {
		t.Errorf("progress slot not cleared after run: %q", tr.ActionInProgress())
	}
}

func TestRun_ProgressMessageResolvedOnce(t *testing.T) {
	tr := NewTracker()

	var calls int
	spec := Spec[struct{}, struct{}]{
		Progress: func(struct{}) string {
			calls++
			return "Working..."
		},
		Operation: func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, nil
		},
		Error: StaticError[struct{}]("unused"),
	}

	Run(context.Background(), tr, spec, struct{}{})

	if calls != 1 {
		t.Errorf("progress message resolved %d times, want 1", calls)
	}
}

func TestRun_OnSuccessReceivesResult(t *testing.T) {
	tr := NewTracker()

	var continuationGot string
	spec := Spec[struct{}, string]{
		Progress: Static[struct{}]("Working..."),
		Operation: func(ctx context.Context, _ struct{}) (string, error) {
			return "new-name", nil
		},
		OnSuccess: func(ctx context.Context, result string) error {
			continuationGot = result
			return nil
		},
		Error: StaticError[struct{}]("unused"),
	}

	got := Run(context.Background(), tr, spec, struct{}{})
	if got == nil || *got != "new-name" {
		t.Fatalf("expected result %q, got %v", "new-name", got)
	}
	if continuationGot != "new-name" {
		t.Errorf("continuation received %q, want the operation's result", continuationGot)
	}
}

func TestRun_OnSuccessFailureIsNormalized(t *testing.T) {
	tr := NewTracker()
	seq := recordProgress(tr)

	spec := Spec[struct{}, int]{
		Progress: Static[struct{}]("Working..."),
		Operation: func(ctx context.Context, _ struct{}) (int, error) {
			return 7, nil
		},
		OnSuccess: func(ctx context.Context, _ int) error {
			return errors.New("refresh failed")
		},
		Error: func(_ struct{}, cause error) string {
			return "Failed: " + cause.Error()
		},
	}

	got := Run(context.Background(), tr, spec, struct{}{})
	if got != nil {
		t.Fatalf("expected nil result when the continuation fails, got %v", *got)
	}
	if tr.LastError() != "Failed: refresh failed" {
		t.Errorf("error slot = %q, want the continuation failure surfaced", tr.LastError())
	}

	// The progress slot is still cleared exactly once.
	want := []string{"Working...", ""}
	if diff := cmp.Diff(want, *seq); diff != "" {
		t.Errorf("progress sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_VoidResult(t *testing.T) {
	tr := NewTracker()

	spec := Spec[struct{}, struct{}]{
		Progress: Static[struct{}]("Working..."),
		Operation: func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, nil
		},
		Error: StaticError[struct{}]("unused"),
	}

	// Success with a void-shaped result is still distinguishable from
	// failure: the pointer is non-nil.
	if got := Run(context.Background(), tr, spec, struct{}{}); got == nil {
		t.Error("expected non-nil pointer for a successful void operation")
	}

	failing := spec
	failing.Operation = func(ctx context.Context, _ struct{}) (struct{}, error) {
		return struct{}{}, errors.New("boom")
	}
	if got := Run(context.Background(), tr, failing, struct{}{}); got != nil {
		t.Error("expected nil pointer for a failed void operation")
	}
}

func TestRun_DynamicErrorMessageSeesArgs(t *testing.T) {
	tr := NewTracker()

	spec := Spec[string, struct{}]{
		Progress: func(name string) string { return "Compacting " + name + "..." },
		Operation: func(ctx context.Context, _ string) (struct{}, error) {
			return struct{}{}, errors.New("disk in use")
		},
		Error: func(name string, cause error) string {
			return "Failed to compact " + name + ": " + cause.Error()
		},
	}

	Run(context.Background(), tr, spec, "Debian")

	want := "Failed to compact Debian: disk in use"
	if tr.LastError() != want {
		t.Errorf("error slot = %q, want %q", tr.LastError(), want)
	}
}
