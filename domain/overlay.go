package domain

// ApplyValidation merges externally sourced validation statuses into a copy
// of the task list. The board does not own review outcomes; they are fetched
// separately and only rendered for tasks at 100% completion.
func ApplyValidation(tasks []Task, statuses map[string]ValidationStatus) []Task {
	if len(statuses) == 0 {
		return tasks
	}
	out := make([]Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if s, ok := statuses[out[i].ID]; ok {
			out[i].Validation = s
		}
	}
	return out
}
