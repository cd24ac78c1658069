package domain

// Canonical completion values assigned when a task is dropped into a column.
const (
	todoCompletion       = 0
	inProgressCompletion = 50
	doneCompletion       = 100
)

// TransitionPatch converts a drag onto target into the completion change to
// persist. It returns false when the task already renders in target, or when
// target names no known column; either way nothing should be written.
//
// Dropping into the in-progress column always resets completion to 50, even
// when the task held a different in-progress value before being dragged
// away. Nothing records the prior value, so there is nothing to restore.
func TransitionPatch(t Task, target Column) (TaskPatch, bool) {
	if Classify(t) == target {
		return TaskPatch{}, false
	}
	var pct int
	switch target {
	case ColumnTodo:
		pct = todoCompletion
	case ColumnInProgress:
		pct = inProgressCompletion
	case ColumnDone:
		pct = doneCompletion
	default:
		return TaskPatch{}, false
	}
	return TaskPatch{PercentCompletion: &pct}, true
}
