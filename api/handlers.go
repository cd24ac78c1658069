package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"teambrains-board/board"
	"teambrains-board/domain"
)

// boardMaxAge bounds how stale a board may be before a read refetches the
// project from the planification service.
const boardMaxAge = 30 * time.Second

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, boards Boards, overlay Overlay, auth Authenticator, logger *log.Logger) {
	g := e.Group("/api", BearerMiddleware(auth))

	g.GET("/projects/:project/board", getBoard(boards, overlay, logger))
	g.GET("/projects/:project/board/stream", streamBoard(boards, overlay))
	g.GET("/projects/:project/tasks", getTasks(boards))
	g.GET("/projects/:project/stats", getStats(boards))
	g.GET("/projects/:project/members", getMembers(overlay))
	g.GET("/projects/:project/failures", getFailures(boards))
	g.POST("/projects/:project/tasks", postTask(boards))
	g.PUT("/tasks/:id", putTask(boards, overlay))
	g.DELETE("/tasks/:id", deleteTask(boards, overlay))
	g.POST("/tasks/:id/transition", postTransition(boards, overlay))

	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getBoard(boards Boards, overlay Overlay, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newBoardRequestMetrics(logger, "/api/projects/:project/board")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		ctx := c.Request().Context()
		b := boards.Board(c.Param("project"))

		fetchStart := time.Now()
		refreshErr := b.EnsureFresh(ctx, boardMaxAge)
		metrics.ObserveFetch(time.Since(fetchStart))
		if refreshErr != nil {
			metrics.SetErrorStage("refresh")
			err = writeError(c, refreshErr)
			return err
		}

		resp := boardPayload(ctx, overlay, b.Graph.Snapshot())
		metrics.SetTasksReturned(resp.Stats.Total)

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, resp)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func streamBoard(boards Boards, overlay Overlay) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		b := boards.Board(c.Param("project"))
		if err := b.EnsureFresh(ctx, boardMaxAge); err != nil {
			return writeError(c, err)
		}

		sub := b.Graph.Subscribe()
		defer b.Graph.Unsubscribe(sub)

		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set(echo.HeaderCacheControl, "no-cache")
		res.Header().Set(echo.HeaderConnection, "keep-alive")
		res.Header().Set("X-Accel-Buffering", "no")
		res.WriteHeader(http.StatusOK)

		send := func(snap board.Snapshot) error {
			data, err := sonic.Marshal(boardPayload(ctx, overlay, snap))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(res, "event: board\ndata: %s\n\n", data); err != nil {
				return err
			}
			res.Flush()
			return nil
		}

		if err := send(b.Graph.Snapshot()); err != nil {
			return nil
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap, ok := <-sub:
				if !ok {
					return nil
				}
				if err := send(snap); err != nil {
					return nil
				}
			}
		}
	}
}

func getTasks(boards Boards) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		criteria, err := criteriaFromQuery(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}

		b := boards.Board(c.Param("project"))
		if err := b.EnsureFresh(ctx, boardMaxAge); err != nil {
			return writeError(c, err)
		}

		tasks := criteria.Apply(b.Repo.List(), domain.DateOf(time.Now()))
		return c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
	}
}

func getStats(boards Boards) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		b := boards.Board(c.Param("project"))
		if err := b.EnsureFresh(ctx, boardMaxAge); err != nil {
			return writeError(c, err)
		}
		snap := b.Graph.Snapshot()
		return c.JSON(http.StatusOK, statsResponse{Stats: snap.Stats, Progress: snap.Progress})
	}
}

func getMembers(overlay Overlay) echo.HandlerFunc {
	return func(c echo.Context) error {
		members, err := overlay.ProjectMembers(c.Request().Context(), c.Param("project"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, membersResponse{Members: members})
	}
}

func getFailures(boards Boards) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := boards.Board(c.Param("project"))
		failures := b.Repo.Failures()
		if failures == nil {
			failures = []board.Failure{}
		}
		return c.JSON(http.StatusOK, failuresResponse{Failures: failures})
	}
}

func postTask(boards Boards) echo.HandlerFunc {
	return func(c echo.Context) error {
		var draft domain.TaskDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if draft.AssigneeID == "" {
			draft.AssigneeID = actingUser(c)
		}

		b := boards.Board(c.Param("project"))
		task, err := b.Repo.Create(c.Request().Context(), draft)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func putTask(boards Boards, overlay Overlay) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		b, ok := boards.Locate(id)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown task " + id})
		}

		var patch domain.TaskPatch
		if err := decodeBody(c, &patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if patch.IsZero() {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "empty patch"})
		}

		ctx := c.Request().Context()
		task, err := b.Repo.Update(ctx, id, patch)
		if err != nil {
			return writeError(c, err)
		}
		if patch.PercentCompletion != nil {
			overlay.EvictTask(ctx, id)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(boards Boards, overlay Overlay) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		b, ok := boards.Locate(id)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown task " + id})
		}

		ctx := c.Request().Context()
		if err := b.Repo.Delete(ctx, id); err != nil {
			return writeError(c, err)
		}
		overlay.EvictTask(ctx, id)
		return c.NoContent(http.StatusNoContent)
	}
}

func postTransition(boards Boards, overlay Overlay) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		b, ok := boards.Locate(id)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown task " + id})
		}

		var req transitionRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if !req.Column.Valid() {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown column"})
		}

		ctx := c.Request().Context()
		task, moved, err := b.Repo.Transition(ctx, id, req.Column)
		if err != nil {
			return writeError(c, err)
		}
		if moved {
			overlay.EvictTask(ctx, id)
		}
		return c.JSON(http.StatusOK, transitionResponse{Task: task, Moved: moved})
	}
}

// boardPayload merges the validation overlay into a snapshot's done column.
// Overlay fetch trouble leaves tasks without a status rather than failing
// the whole board.
func boardPayload(ctx context.Context, overlay Overlay, snap board.Snapshot) boardResponse {
	statuses := overlay.ValidationStatuses(ctx, snap.Columns.Done)
	if len(statuses) > 0 {
		snap.Columns.Done = domain.ApplyValidation(snap.Columns.Done, statuses)
	}
	return boardResponse{
		Version:  snap.Version,
		Columns:  snap.Columns,
		Filtered: snap.Filtered,
		Stats:    snap.Stats,
		Progress: snap.Progress,
	}
}

func criteriaFromQuery(c echo.Context) (domain.Criteria, error) {
	criteria := domain.Criteria{AssigneeID: c.QueryParam("assignee")}

	if raw := c.QueryParam("priority"); raw != "" {
		p := domain.Priority(raw)
		if !p.Valid() {
			return domain.Criteria{}, errors.New("invalid priority filter")
		}
		criteria.Priority = p
	}
	if raw := c.QueryParam("status"); raw != "" {
		col := domain.Column(raw)
		if !col.Valid() {
			return domain.Criteria{}, errors.New("invalid status filter")
		}
		criteria.Status = col
	}
	if raw := c.QueryParam("due"); raw != "" {
		bucket := domain.DueBucket(raw)
		if !bucket.Valid() {
			return domain.Criteria{}, errors.New("invalid due filter")
		}
		criteria.Due = bucket
	}
	return criteria, nil
}

func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, taskBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	var notFound *domain.NotFoundError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: notFound.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}
