package board

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"teambrains-board/domain"
)

// Board bundles the repository of one project with its dataflow graph.
type Board struct {
	Repo  *Repository
	Graph *Graph
}

// EnsureFresh refreshes the repository when it has never loaded or its last
// full fetch is older than maxAge.
func (b *Board) EnsureFresh(ctx context.Context, maxAge time.Duration) error {
	if !b.Repo.Stale(maxAge) {
		return nil
	}
	return b.Repo.Refresh(ctx)
}

// Manager hands out one Board per project, built lazily on first use. It is
// the explicit, injectable home of board state; nothing here hides behind a
// package-level singleton.
type Manager struct {
	client Client
	logger *log.Logger
	today  func() domain.Date

	mu     sync.Mutex
	boards map[string]*Board
}

// NewManager creates a Manager over the given planification client. today
// may be nil for the wall clock.
func NewManager(client Client, logger *log.Logger, today func() domain.Date) *Manager {
	if client == nil {
		panic("board.NewManager: client is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Manager{
		client: client,
		logger: logger,
		today:  today,
		boards: make(map[string]*Board),
	}
}

// Board returns the board for projectID, creating it on first use.
func (m *Manager) Board(projectID string) *Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.boards[projectID]; ok {
		return b
	}
	repo := NewRepository(projectID, m.client, m.logger)
	b := &Board{Repo: repo, Graph: NewGraph(repo, m.today)}
	m.boards[projectID] = b
	return b
}

// Locate finds the board currently holding taskID. Task-scoped mutations
// arrive without a project ID, so they resolve against the boards already
// loaded in this process.
func (m *Manager) Locate(taskID string) (*Board, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.boards {
		if _, ok := b.Repo.Get(taskID); ok {
			return b, true
		}
	}
	return nil, false
}

// Close shuts down every board, draining pending remote writes.
func (m *Manager) Close() {
	m.mu.Lock()
	boards := make([]*Board, 0, len(m.boards))
	for _, b := range m.boards {
		boards = append(boards, b)
	}
	m.boards = make(map[string]*Board)
	m.mu.Unlock()

	for _, b := range boards {
		b.Graph.Close()
		b.Repo.Close()
	}
}
