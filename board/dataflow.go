package board

import (
	"sync"
	"sync/atomic"
	"time"

	"teambrains-board/domain"
)

// Snapshot is one consistent derived view of the board: the column layout,
// the filtered list for the active criteria, and the progress statistics.
type Snapshot struct {
	Version  uint64         `json:"version"`
	Columns  domain.Columns `json:"columns"`
	Filtered []domain.Task  `json:"filtered"`
	Stats    domain.Stats   `json:"stats"`
	Progress int            `json:"progress"`
}

// Graph reacts to repository change events and recomputes the derived views
// serially, so classification, filtering and aggregation never observe a
// half-applied change. Readers always get complete, immutable snapshots.
type Graph struct {
	repo  *Repository
	today func() domain.Date

	mu       sync.RWMutex
	criteria domain.Criteria
	snapshot Snapshot
	subs     []chan Snapshot
	version  atomic.Uint64

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewGraph builds the dataflow graph over repo and starts its recompute
// loop. today is injectable so derived views are testable against a fixed
// clock; pass nil for the wall clock.
func NewGraph(repo *Repository, today func() domain.Date) *Graph {
	if today == nil {
		today = func() domain.Date { return domain.DateOf(time.Now()) }
	}
	g := &Graph{
		repo:  repo,
		today: today,
		kick:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	g.recompute()
	g.wg.Add(1)
	go g.loop(repo.Subscribe())
	return g
}

// Close stops the recompute loop.
func (g *Graph) Close() {
	g.once.Do(func() { close(g.done) })
	g.wg.Wait()
}

// Snapshot returns the latest derived view.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshot
}

// SetCriteria swaps the active filter criteria and recomputes.
func (g *Graph) SetCriteria(c domain.Criteria) {
	g.mu.Lock()
	g.criteria = c
	g.mu.Unlock()
	g.poke()
}

// Criteria returns the active filter criteria.
func (g *Graph) Criteria() domain.Criteria {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.criteria
}

// Subscribe delivers every fresh snapshot. Slow consumers only ever lag by
// one: stale intermediate snapshots are replaced, not queued.
func (g *Graph) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	g.mu.Lock()
	g.subs = append(g.subs, ch)
	g.mu.Unlock()
	return ch
}

// Unsubscribe detaches a channel obtained from Subscribe.
func (g *Graph) Unsubscribe(ch <-chan Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, sub := range g.subs {
		if sub == ch {
			g.subs = append(g.subs[:i], g.subs[i+1:]...)
			return
		}
	}
}

func (g *Graph) poke() {
	select {
	case g.kick <- struct{}{}:
	default:
	}
}

func (g *Graph) loop(changes <-chan struct{}) {
	defer g.wg.Done()
	for {
		select {
		case <-g.done:
			return
		case <-changes:
			g.recompute()
		case <-g.kick:
			g.recompute()
		}
	}
}

func (g *Graph) recompute() {
	tasks := g.repo.List()
	today := g.today()

	g.mu.Lock()
	criteria := g.criteria
	snap := Snapshot{
		Version:  g.version.Add(1),
		Columns:  domain.Organize(tasks),
		Filtered: criteria.Apply(tasks, today),
		Stats:    domain.Summarize(tasks, today),
		Progress: domain.ProjectProgress(tasks),
	}
	g.snapshot = snap
	subs := g.subs
	g.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot the consumer never read.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
