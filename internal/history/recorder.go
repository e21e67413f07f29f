package history

import (
	"time"

	"distrolabs/wslm/internal/domain"

	"github.com/google/uuid"
)

// Recorder tracks one gate invocation from start to terminal outcome.
// A nil store degrades to a no-op: an action should never fail just
// because local tracking is unavailable.
type Recorder struct {
	store   Store
	rec     *Record
	started time.Time
}

// Begin persists a "running" record for the invocation and returns
// the recorder used to finalize it. Persistence failures are silently
// dropped for the same reason a nil store is tolerated.
func Begin(store Store, action domain.ActionID, distro string) *Recorder {
	r := &Recorder{store: store, started: time.Now()}
	if store == nil {
		return r
	}

	rec := &Record{
		InvocationID: uuid.NewString(),
		Distro:       distro,
		Action:       action,
		Outcome:      OutcomeRunning,
	}
	if err := store.Save(rec); err == nil {
		r.rec = rec
	}
	return r
}

// StopInserted marks that the gate ran a stop step before the action.
func (r *Recorder) StopInserted() {
	if r.rec != nil {
		r.rec.Stopped = true
	}
}

// Finalize writes the terminal outcome and duration. errMsg may be
// empty for success and cancellation.
func (r *Recorder) Finalize(outcome, errMsg string) {
	if r.rec == nil {
		return
	}
	r.rec.Outcome = outcome
	r.rec.ErrorMessage = errMsg
	r.rec.DurationMs = time.Since(r.started).Milliseconds()
	r.store.Save(r.rec)
}
