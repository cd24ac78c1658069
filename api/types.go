package api

import (
	"context"

	"teambrains-board/board"
	"teambrains-board/domain"
)

// Boards hands out per-project board state for handlers.
type Boards interface {
	Board(projectID string) *board.Board
	Locate(taskID string) (*board.Board, bool)
}

// Overlay resolves validation statuses and member rosters for board views,
// normally through the redis cache in front of the planification service.
type Overlay interface {
	ValidationStatuses(ctx context.Context, tasks []domain.Task) map[string]domain.ValidationStatus
	ProjectMembers(ctx context.Context, projectID string) ([]domain.Member, error)
	EvictTask(ctx context.Context, taskID string)
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}
