package domain

// Classify maps a task's completion percentage to its board column: 0 is
// to-do, 100 is done, everything in between is in progress. Every task
// lands in exactly one column.
func Classify(t Task) Column {
	switch t.PercentCompletion {
	case 0:
		return ColumnTodo
	case 100:
		return ColumnDone
	default:
		return ColumnInProgress
	}
}

// Columns holds a board layout, one slice per column.
type Columns struct {
	Todo       []Task `json:"to-do"`
	InProgress []Task `json:"in-progress"`
	Done       []Task `json:"done"`
}

// Organize partitions tasks into board columns, preserving the relative
// order of tasks inside each column.
func Organize(tasks []Task) Columns {
	cols := Columns{
		Todo:       []Task{},
		InProgress: []Task{},
		Done:       []Task{},
	}
	for _, t := range tasks {
		switch Classify(t) {
		case ColumnTodo:
			cols.Todo = append(cols.Todo, t)
		case ColumnDone:
			cols.Done = append(cols.Done, t)
		default:
			cols.InProgress = append(cols.InProgress, t)
		}
	}
	return cols
}
