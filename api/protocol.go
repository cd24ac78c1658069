package api

import (
	"teambrains-board/board"
	"teambrains-board/domain"
)

const taskBodyMaxSize = 64 * 1024 // 64 KiB

// GET /api/projects/:project/board response body, also the SSE event payload.
type boardResponse struct {
	Version  uint64         `json:"version"`
	Columns  domain.Columns `json:"columns"`
	Filtered []domain.Task  `json:"filtered,omitempty"`
	Stats    domain.Stats   `json:"stats"`
	Progress int            `json:"progress"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type statsResponse struct {
	Stats    domain.Stats `json:"stats"`
	Progress int          `json:"progress"`
}

type membersResponse struct {
	Members []domain.Member `json:"members"`
}

type failuresResponse struct {
	Failures []board.Failure `json:"failures"`
}

// POST /api/tasks/:id/transition request and response bodies.
type transitionRequest struct {
	Column domain.Column `json:"column"`
}

type transitionResponse struct {
	Task  domain.Task `json:"task"`
	Moved bool        `json:"moved"`
}

type errorResponse struct {
	Error string `json:"error"`
}
