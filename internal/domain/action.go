package domain

// ActionID names one user-triggered operation against a distribution.
// The orchestration layer keys its precondition rules on these.
type ActionID string

const (
	ActionStart   ActionID = "start"
	ActionStop    ActionID = "stop"
	ActionClone   ActionID = "clone"
	ActionRename  ActionID = "rename"
	ActionMove    ActionID = "move"
	ActionExport  ActionID = "export"
	ActionResize  ActionID = "resize"
	ActionCompact ActionID = "compact"
	ActionSparse  ActionID = "sparse"
	ActionMount   ActionID = "mount"
	ActionUnmount ActionID = "unmount"
	ActionRun     ActionID = "run"
)

// RequiresStop reports whether the action operates on the backing disk
// or registration and therefore must not run against a live
// distribution. The orchestration gate inserts a stop step before
// these when the target is running.
func (a ActionID) RequiresStop() bool {
	switch a {
	case ActionClone, ActionRename, ActionMove, ActionExport,
		ActionResize, ActionCompact, ActionSparse:
		return true
	}
	return false
}
