package orchestrate

import (
	"context"

	"distrolabs/wslm/internal/domain"
)

// StateReader is the synchronous snapshot accessor the gate consults
// at decision time. Backed by the lifecycle watcher's polling loop;
// the gate never subscribes, it reads once per invocation.
type StateReader interface {
	// State returns the last observed lifecycle state for the named
	// distribution, or domain.StateUnknown if it has never been seen.
	State(name string) domain.State
}

// ConfirmFunc presents the "Stop & Continue" affordance for a guarded
// action against a live target and reports the user's choice. A false
// return (or an error, e.g. the context ending while the prompt is
// up) cancels the invocation before anything has run.
type ConfirmFunc func(ctx context.Context, target domain.Distribution, action domain.ActionID) (bool, error)

// Outcome is the terminal state of one gate invocation.
type Outcome int

const (
	// OutcomeDone means the requested action ran, directly or after a
	// successful stop step. Whether it succeeded is reported
	// separately (nil result + error slot on failure).
	OutcomeDone Outcome = iota

	// OutcomeCancelled means the user declined the stop confirmation.
	// Neither the stop nor the requested action was attempted, and the
	// error slot was not touched.
	OutcomeCancelled

	// OutcomeStopFailed means the stop step ran and failed. The
	// requested action was never attempted; the stop's error message
	// is in the error slot.
	OutcomeStopFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeStopFailed:
		return "stop-failed"
	}
	return "unknown"
}

// Gate decides whether a stop precondition must run before a requested
// action, and orchestrates the two-step sequence when it must. One
// gate serves all actions; per-invocation state lives on the stack of
// Invoke.
type Gate struct {
	tracker *Tracker
	states  StateReader
	confirm ConfirmFunc
	stop    Spec[domain.Distribution, struct{}]
}

// NewGate builds a gate. stop is the sub-action used for the
// precondition step; its args value is the target distribution.
func NewGate(tr *Tracker, states StateReader, confirm ConfirmFunc, stop Spec[domain.Distribution, struct{}]) *Gate {
	return &Gate{tracker: tr, states: states, confirm: confirm, stop: stop}
}

// Tracker returns the shared slot tracker all of this gate's
// invocations report through.
func (g *Gate) Tracker() *Tracker { return g.tracker }

// StopSpec builds the canonical stop sub-action around the given
// backend call.
func StopSpec(stop func(ctx context.Context, name string) error) Spec[domain.Distribution, struct{}] {
	return Spec[domain.Distribution, struct{}]{
		Progress: func(d domain.Distribution) string {
			return "Stopping " + d.Name + "..."
		},
		Operation: func(ctx context.Context, d domain.Distribution) (struct{}, error) {
			return struct{}{}, stop(ctx, d.Name)
		},
		Error: func(d domain.Distribution, cause error) string {
			return "Failed to stop " + d.Name + ": " + cause.Error()
		},
	}
}

// Invoke runs one action against one target through the gate.
//
// If the action carries no stop precondition, or the target is not
// live, the action runs immediately. Otherwise the user is asked to
// confirm; on confirmation the stop sub-action runs first, and the
// requested action runs only if the stop reported success. Between the
// two steps the progress slot is briefly empty — that marks the step
// boundary and is intentional.
//
// A target in StateTransitioning is treated as running: another cause
// is already moving it, so the conservative choice is to still demand
// an explicit stop rather than guess its resting state.
//
// The returned pointer is nil unless the requested action's operation
// succeeded.
func Invoke[A, R any](ctx context.Context, g *Gate, action domain.ActionID, target domain.Distribution, spec Spec[A, R], args A) (*R, Outcome) {
	if !action.RequiresStop() || !g.targetLive(target) {
		return Run(ctx, g.tracker, spec, args), OutcomeDone
	}

	ok, err := g.confirm(ctx, target, action)
	if err != nil || !ok {
		return nil, OutcomeCancelled
	}

	if Run(ctx, g.tracker, g.stop, target) == nil {
		return nil, OutcomeStopFailed
	}

	return Run(ctx, g.tracker, spec, args), OutcomeDone
}

// targetLive reads the lifecycle snapshot once. Running and
// Transitioning both count as live; Stopped and Unknown do not.
func (g *Gate) targetLive(target domain.Distribution) bool {
	switch g.states.State(target.Name) {
	case domain.StateRunning, domain.StateTransitioning:
		return true
	}
	return false
}
