package history

import (
	"time"

	"distrolabs/wslm/internal/domain"
)

// Terminal outcomes stored for an action record. Running means the
// process was interrupted before the record was finalized.
const (
	OutcomeRunning    = "running"
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeCancelled  = "cancelled"
	OutcomeStopFailed = "stop-failed"
)

// Record is one orchestrated action as persisted locally. It exists
// for two reasons: the `wslm history` command, and spotting actions
// that were cut short by a crash or Ctrl+C (still "running" on the
// next start).
type Record struct {
	// ID is the auto-increment primary key (assigned on insert).
	ID int64

	// InvocationID ties the record to one gate invocation.
	InvocationID string

	// Distro is the name of the distribution acted upon.
	Distro string

	// Action is the operation, e.g. "clone", "compact".
	Action domain.ActionID

	// Stopped is true when the gate inserted a stop step before the
	// action.
	Stopped bool

	// Outcome is the terminal state; "running" until finalized.
	Outcome string

	// ErrorMessage holds the surfaced error when Outcome is "error"
	// or "stop-failed".
	ErrorMessage string

	// DurationMs is wall time from invocation to terminal state.
	DurationMs int64

	// CreatedAt is when the action was first recorded.
	CreatedAt time.Time

	// UpdatedAt is the last time the record was modified.
	UpdatedAt time.Time
}
