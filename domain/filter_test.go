package domain

import (
	"testing"
	"time"
)

// Wednesday 2025-03-12; its ISO week runs Monday 2025-03-10 through
// Sunday 2025-03-16.
var filterToday = NewDate(2025, time.March, 12)

func filterFixture() []Task {
	return []Task{
		{ID: "a", AssigneeID: "u1", Priority: PriorityHigh, PercentCompletion: 0, DueDate: NewDate(2025, time.March, 12)},
		{ID: "b", AssigneeID: "u2", Priority: PriorityLow, PercentCompletion: 40, DueDate: NewDate(2025, time.March, 14)},
		{ID: "c", AssigneeID: "u1", Priority: PriorityHigh, PercentCompletion: 100, DueDate: NewDate(2025, time.March, 3)},
		{ID: "d", AssigneeID: "u3", Priority: PriorityMedium, PercentCompletion: 70, DueDate: NewDate(2025, time.March, 5)},
		{ID: "e", AssigneeID: "u1", Priority: PriorityMedium, PercentCompletion: 0, DueDate: NewDate(2025, time.March, 24)},
	}
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Task, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("expected %v, got %v", want, ids(got))
		}
	}
}

func TestApplyEmptyCriteriaIsIdentity(t *testing.T) {
	tasks := filterFixture()
	got := Criteria{}.Apply(tasks, filterToday)
	assertIDs(t, got, "a", "b", "c", "d", "e")
}

func TestApplyAssignee(t *testing.T) {
	got := Criteria{AssigneeID: "u1"}.Apply(filterFixture(), filterToday)
	assertIDs(t, got, "a", "c", "e")
}

func TestApplyPriority(t *testing.T) {
	got := Criteria{Priority: PriorityHigh}.Apply(filterFixture(), filterToday)
	assertIDs(t, got, "a", "c")
}

func TestApplyStatusBuckets(t *testing.T) {
	tasks := filterFixture()
	assertIDs(t, Criteria{Status: ColumnTodo}.Apply(tasks, filterToday), "a", "e")
	assertIDs(t, Criteria{Status: ColumnInProgress}.Apply(tasks, filterToday), "b", "d")
	assertIDs(t, Criteria{Status: ColumnDone}.Apply(tasks, filterToday), "c")
}

func TestApplyDueBuckets(t *testing.T) {
	tasks := filterFixture()
	assertIDs(t, Criteria{Due: DueToday}.Apply(tasks, filterToday), "a")
	assertIDs(t, Criteria{Due: DueThisWeek}.Apply(tasks, filterToday), "a", "b")
	// c is past due but complete, so only d is overdue.
	assertIDs(t, Criteria{Due: DueOverdue}.Apply(tasks, filterToday), "d")
	assertIDs(t, Criteria{Due: DueUpcoming}.Apply(tasks, filterToday), "e")
}

func TestApplyOverdueExcludesCompletedTasks(t *testing.T) {
	yesterday := filterToday.AddDays(-1)
	tasks := []Task{
		{ID: "open", PercentCompletion: 80, DueDate: yesterday},
		{ID: "closed", PercentCompletion: 100, DueDate: yesterday},
	}
	assertIDs(t, Criteria{Due: DueOverdue}.Apply(tasks, filterToday), "open")
}

func TestApplyDimensionsComposeWithAND(t *testing.T) {
	tasks := filterFixture()
	both := Criteria{AssigneeID: "u1", Priority: PriorityHigh}.Apply(tasks, filterToday)

	byAssignee := Criteria{AssigneeID: "u1"}.Apply(tasks, filterToday)
	byPriority := Criteria{Priority: PriorityHigh}.Apply(tasks, filterToday)

	inBoth := map[string]int{}
	for _, task := range byAssignee {
		inBoth[task.ID]++
	}
	for _, task := range byPriority {
		inBoth[task.ID]++
	}
	want := []string{}
	for _, task := range tasks {
		if inBoth[task.ID] == 2 {
			want = append(want, task.ID)
		}
	}
	assertIDs(t, both, want...)
}

func TestApplyWeekStartsOnMonday(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	sunday := NewDate(2025, time.March, 16)
	tasks := []Task{
		{ID: "mon", DueDate: NewDate(2025, time.March, 10)},
		{ID: "next-mon", DueDate: NewDate(2025, time.March, 17)},
	}
	assertIDs(t, Criteria{Due: DueThisWeek}.Apply(tasks, sunday), "mon")
	assertIDs(t, Criteria{Due: DueUpcoming}.Apply(tasks, sunday), "next-mon")
}
