package domain

// DueBucket is a time-relative classification of a task's due date.
type DueBucket string

const (
	DueToday    DueBucket = "today"
	DueThisWeek DueBucket = "week"
	DueOverdue  DueBucket = "overdue"
	DueUpcoming DueBucket = "upcoming"
)

// Valid reports whether b names a known due bucket.
func (b DueBucket) Valid() bool {
	switch b {
	case DueToday, DueThisWeek, DueOverdue, DueUpcoming:
		return true
	}
	return false
}

// Criteria selects tasks along independent dimensions. Zero-valued fields
// impose no constraint; populated dimensions compose with AND.
type Criteria struct {
	AssigneeID string
	Priority   Priority
	Status     Column
	Due        DueBucket
}

// IsZero reports whether the criteria constrain nothing.
func (c Criteria) IsZero() bool {
	return c.AssigneeID == "" && c.Priority == "" && c.Status == "" && c.Due == ""
}

// Apply filters tasks against the criteria. The caller supplies today so
// due buckets are evaluated against a controlled clock. Empty criteria
// return the input unchanged.
func (c Criteria) Apply(tasks []Task, today Date) []Task {
	if c.IsZero() {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if c.matches(t, today) {
			out = append(out, t)
		}
	}
	return out
}

func (c Criteria) matches(t Task, today Date) bool {
	if c.AssigneeID != "" && t.AssigneeID != c.AssigneeID {
		return false
	}
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	if c.Status != "" && Classify(t) != c.Status {
		return false
	}
	if c.Due != "" && !matchesDue(t, c.Due, today) {
		return false
	}
	return true
}

func matchesDue(t Task, bucket DueBucket, today Date) bool {
	switch bucket {
	case DueToday:
		return t.DueDate.Equal(today)
	case DueThisWeek:
		start := today.StartOfWeek()
		end := today.EndOfWeek()
		return !t.DueDate.Before(start) && !t.DueDate.After(end)
	case DueOverdue:
		return t.DueDate.Before(today) && t.PercentCompletion < 100
	case DueUpcoming:
		return t.DueDate.After(today.EndOfWeek())
	}
	return true
}
