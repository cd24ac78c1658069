package planification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"teambrains-board/domain"
)

type tokenKey struct{}

// WithToken attaches the caller's bearer credential to the context. The
// client treats it as an opaque string, forwards it on every request and
// never manages its lifecycle.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Token returns the bearer credential previously attached with WithToken,
// or "" when the context carries none.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to the remote planification service that owns task
// persistence. All board mutations eventually land here.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the service at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("planification: base URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type taskResponse struct {
	Task domain.Task `json:"task"`
}

type membersResponse struct {
	Members []domain.Member `json:"members"`
}

type validationResponse struct {
	CurrentStatus domain.ValidationStatus `json:"current_status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListTasks retrieves the full task list for a project.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	var resp tasksResponse
	err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/tasks", nil, &resp, "list", "")
	if err != nil {
		return nil, err
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.Task{}
	}
	return resp.Tasks, nil
}

// CreateTask submits a draft; the service assigns the ID and returns the
// stored task.
func (c *Client) CreateTask(ctx context.Context, projectID string, draft domain.TaskDraft) (domain.Task, error) {
	var resp taskResponse
	err := c.do(ctx, http.MethodPost, "/projects/"+projectID+"/tasks", draft, &resp, "create", "")
	if err != nil {
		return domain.Task{}, err
	}
	return resp.Task, nil
}

// UpdateTask sends a partial patch and returns the task as stored after the
// update.
func (c *Client) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	var resp taskResponse
	err := c.do(ctx, http.MethodPut, "/tasks/"+taskID, patch, &resp, "update", taskID)
	if err != nil {
		return domain.Task{}, err
	}
	return resp.Task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+taskID, nil, nil, "delete", taskID)
}

// ProjectMembers retrieves the member roster used for assignee defaults and
// filters.
func (c *Client) ProjectMembers(ctx context.Context, projectID string) ([]domain.Member, error) {
	var resp membersResponse
	err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/members", nil, &resp, "members", "")
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// TaskValidation fetches the externally managed review status of a task.
// Tasks the validation service has never seen report not_started.
func (c *Client) TaskValidation(ctx context.Context, taskID string) (domain.ValidationStatus, error) {
	var resp validationResponse
	err := c.do(ctx, http.MethodGet, "/validation/tasks/"+taskID+"/status", nil, &resp, "validation", taskID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return domain.ValidationNotStarted, nil
		}
		return "", err
	}
	if resp.CurrentStatus == "" {
		return domain.ValidationNotStarted, nil
	}
	return resp.CurrentStatus, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, op, taskID string) error {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return &domain.RemoteError{Op: op, TaskID: taskID, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.RemoteError{Op: op, TaskID: taskID, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.RemoteError{Op: op, TaskID: taskID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &domain.RemoteError{Op: op, TaskID: taskID, Err: err}
		}
		if err := sonic.Unmarshal(data, out); err != nil {
			return &domain.RemoteError{Op: op, TaskID: taskID, Err: err}
		}
		return nil
	}

	return c.mapFailure(resp, op, taskID)
}

func (c *Client) mapFailure(resp *http.Response, op, taskID string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	var remote errorResponse
	_ = sonic.Unmarshal(data, &remote)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &domain.NotFoundError{TaskID: taskID}
	case http.StatusBadRequest:
		reason := remote.Error
		if reason == "" {
			reason = "rejected by the planification service"
		}
		return &domain.ValidationError{Field: "request", Reason: reason}
	default:
		msg := remote.Error
		if msg == "" {
			msg = resp.Status
		}
		return &domain.RemoteError{Op: op, TaskID: taskID, Err: fmt.Errorf("%s", msg)}
	}
}
