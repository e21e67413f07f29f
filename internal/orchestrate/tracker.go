package orchestrate

import "sync"

// Snapshot is one observation of the shared action slots.
type Snapshot struct {
	// ActionInProgress is the progress text of the action currently
	// executing, or "" when no action is in flight.
	ActionInProgress string

	// Err is the last surfaced error message, or "" if no action has
	// failed yet. It is overwritten, never accumulated: exactly one
	// error is visible at a time.
	Err string
}

// Tracker owns the two shared UI slots every orchestrated action
// reports through: the single progress cell and the single error cell.
//
// It is a small owned value, not a singleton — construct one per store
// (or per test) and hand it to the runner. Only the runner writes the
// slots; everything else reads.
//
// The tracker does not serialize callers: if two actions run
// concurrently against the same tracker, the slots carry whichever
// wrote last. The UI is expected to disable triggers while
// ActionInProgress is non-empty, but that is advisory.
type Tracker struct {
	mu       sync.Mutex
	progress string
	lastErr  string
	onChange func(Snapshot)
}

// NewTracker returns an idle tracker with both slots empty.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Notify registers fn to be called, synchronously, after every slot
// write. Used by the TUI to repaint and by tests to record the slot
// sequence. Only one observer is supported; a second call replaces
// the first.
func (t *Tracker) Notify(fn func(Snapshot)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// ActionInProgress returns the current progress text, or "" when idle.
func (t *Tracker) ActionInProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// LastError returns the last surfaced error message, or "".
func (t *Tracker) LastError() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// View returns both slots as one consistent snapshot.
func (t *Tracker) View() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{ActionInProgress: t.progress, Err: t.lastErr}
}

// begin publishes the progress text for a starting action. The error
// slot is deliberately left alone: a stale error stays visible until
// something overwrites it (known UX characteristic, not a defect).
func (t *Tracker) begin(msg string) {
	t.mu.Lock()
	t.progress = msg
	snap := Snapshot{ActionInProgress: t.progress, Err: t.lastErr}
	fn := t.onChange
	t.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// end clears the progress slot. Called exactly once per run,
// regardless of outcome.
func (t *Tracker) end() {
	t.begin("")
}

// fail publishes an error message, overwriting any previous one.
func (t *Tracker) fail(msg string) {
	t.mu.Lock()
	t.lastErr = msg
	snap := Snapshot{ActionInProgress: t.progress, Err: t.lastErr}
	fn := t.onChange
	t.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
