// Package orchestrate is the asynchronous action layer every
// state-mutating distribution operation goes through.
//
// It is two small machines composed together. Run wraps one fallible
// backend operation with a guaranteed progress-indicator lifecycle and
// error normalization. Invoke (the precondition gate) decides, from
// the target's lifecycle state, whether a stop step must run — and be
// confirmed by the user — before the requested action may start.
//
// Failures never propagate to callers as error values: they are
// normalized to a human-readable message, written to the shared error
// slot, and reported as a nil result. This swallow-and-report policy
// fits UI-triggered one-shot actions; it is not suitable where the
// caller needs to branch on the failure programmatically.
package orchestrate

import (
	"context"
	"fmt"
)

// Spec is the immutable descriptor of one orchestrated operation. It
// is constructed per call site and carries no mutable state; all
// mutable state lives in the Tracker.
type Spec[A, R any] struct {
	// Progress produces the text shown while the operation runs.
	// Resolved once, before the operation is called.
	Progress Message[A]

	// Operation is the fallible unit of work.
	Operation func(ctx context.Context, args A) (R, error)

	// OnSuccess, if non-nil, runs after Operation succeeds, with the
	// operation's result. Typical use: refresh the distribution list
	// after a rename. Its failure is reported through the same error
	// slot as an operation failure, and the invocation counts as
	// failed.
	OnSuccess func(ctx context.Context, result R) error

	// Error produces the message surfaced when Operation (or
	// OnSuccess) fails.
	Error ErrorText[A]
}

// Run executes spec against args and returns a pointer to the
// operation's result, or nil if it failed.
//
// The progress slot is written synchronously before Operation is
// called and cleared exactly once when Run returns, on every path. On
// failure the resolved error text is written to the error slot; on
// success the error slot is left untouched. Run never retries and
// never returns an error value: callers observe failure only through
// the nil result and the tracker.
func Run[A, R any](ctx context.Context, tr *Tracker, spec Spec[A, R], args A) *R {
	tr.begin(resolveProgress(spec.Progress, args))
	defer tr.end()

	result, err := spec.Operation(ctx, args)
	if err != nil {
		tr.fail(resolveError(spec.Error, args, err))
		return nil
	}

	if spec.OnSuccess != nil {
		if err := spec.OnSuccess(ctx, result); err != nil {
			tr.fail(resolveError(spec.Error, args, err))
			return nil
		}
	}

	return &result
}

func resolveProgress[A any](msg Message[A], args A) string {
	if msg == nil {
		return "Working..."
	}
	return msg(args)
}

func resolveError[A any](text ErrorText[A], args A, cause error) string {
	if text == nil {
		return fmt.Sprintf("Action failed: %v", cause)
	}
	return text(args, cause)
}
