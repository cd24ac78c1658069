package board

import (
	"context"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"teambrains-board/domain"
)

func fixedToday() domain.Date { return domain.NewDate(2025, time.March, 12) }

func newTestGraph(t *testing.T, client *fakeClient) (*Repository, *Graph) {
	t.Helper()
	r := NewRepository("p1", client, log.New())
	t.Cleanup(r.Close)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	g := NewGraph(r, fixedToday)
	t.Cleanup(g.Close)
	return r, g
}

func waitForVersion(t *testing.T, g *Graph, min uint64) Snapshot {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		snap := g.Snapshot()
		if snap.Version >= min {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for snapshot version %d, at %d", min, snap.Version)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGraphInitialSnapshot(t *testing.T) {
	client := &fakeClient{tasks: []domain.Task{
		{ID: "a", PercentCompletion: 0},
		{ID: "b", PercentCompletion: 50},
		{ID: "c", PercentCompletion: 100},
	}}
	_, g := newTestGraph(t, client)

	snap := g.Snapshot()
	if len(snap.Columns.Todo) != 1 || len(snap.Columns.InProgress) != 1 || len(snap.Columns.Done) != 1 {
		t.Fatalf("unexpected columns: %#v", snap.Columns)
	}
	if snap.Stats.Total != 3 || snap.Progress != 50 {
		t.Fatalf("unexpected stats: %#v progress=%d", snap.Stats, snap.Progress)
	}
	if len(snap.Filtered) != 3 {
		t.Fatalf("expected unfiltered list with empty criteria, got %d", len(snap.Filtered))
	}
}

func TestGraphRecomputesAfterMutation(t *testing.T) {
	client := &fakeClient{tasks: []domain.Task{{ID: "a", PercentCompletion: 0}}}
	r, g := newTestGraph(t, client)

	before := g.Snapshot()
	if _, _, err := r.Transition(context.Background(), "a", domain.ColumnDone); err != nil {
		t.Fatalf("transition: %v", err)
	}

	snap := waitForVersion(t, g, before.Version+1)
	if len(snap.Columns.Done) != 1 || snap.Stats.Completed != 1 {
		t.Fatalf("expected recomputed snapshot, got %#v", snap)
	}
	// Derived column always matches classification of the stored task.
	if got, _ := r.Get("a"); domain.Classify(got) != domain.ColumnDone {
		t.Fatalf("column drifted from completion: %#v", got)
	}
}

func TestGraphSetCriteriaRecomputesFilteredView(t *testing.T) {
	client := &fakeClient{tasks: []domain.Task{
		{ID: "a", AssigneeID: "u1", PercentCompletion: 0},
		{ID: "b", AssigneeID: "u2", PercentCompletion: 0},
	}}
	_, g := newTestGraph(t, client)

	before := g.Snapshot()
	g.SetCriteria(domain.Criteria{AssigneeID: "u1"})

	snap := waitForVersion(t, g, before.Version+1)
	if len(snap.Filtered) != 1 || snap.Filtered[0].ID != "a" {
		t.Fatalf("expected filtered view for u1, got %#v", snap.Filtered)
	}
	// Columns and stats stay full-set views.
	if snap.Stats.Total != 2 {
		t.Fatalf("criteria must not affect stats, got %#v", snap.Stats)
	}
}

func TestGraphSubscribeDeliversFreshSnapshots(t *testing.T) {
	client := &fakeClient{tasks: []domain.Task{{ID: "a", PercentCompletion: 0}}}
	r, g := newTestGraph(t, client)

	sub := g.Subscribe()
	if _, _, err := r.Transition(context.Background(), "a", domain.ColumnDone); err != nil {
		t.Fatalf("transition: %v", err)
	}

	select {
	case snap := <-sub:
		if snap.Stats.Completed != 1 {
			// The first delivery may race the write; take the next one.
			select {
			case snap = <-sub:
			case <-time.After(500 * time.Millisecond):
				t.Fatalf("expected a snapshot reflecting the transition, got %#v", snap.Stats)
			}
			if snap.Stats.Completed != 1 {
				t.Fatalf("expected completed snapshot, got %#v", snap.Stats)
			}
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("expected a snapshot delivery")
	}
	g.Unsubscribe(sub)
}
