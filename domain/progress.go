package domain

import "math"

// Stats summarizes a project's tasks for the progress widgets.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
}

// Summarize counts tasks per status bucket. A task at 100% is never
// overdue, whatever its due date says.
func Summarize(tasks []Task, today Date) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.PercentCompletion {
		case 100:
			s.Completed++
		case 0:
			s.Pending++
		default:
			s.InProgress++
		}
		if t.PercentCompletion < 100 && !t.DueDate.IsZero() && t.DueDate.Before(today) {
			s.Overdue++
		}
	}
	return s
}

// ProjectProgress returns the arithmetic mean of all completion percentages
// rounded to the nearest integer, and 0 for an empty task set.
func ProjectProgress(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	sum := 0
	for _, t := range tasks {
		sum += t.PercentCompletion
	}
	return int(math.Round(float64(sum) / float64(len(tasks))))
}
