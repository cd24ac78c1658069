package planification

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"teambrains-board/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestListTasksForwardsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		io.WriteString(w, `{"tasks":[{"id":"1","title":"t","due_date":"2025-03-12","percent_completion":40,"priority":"high"}]}`)
	})

	ctx := WithToken(context.Background(), "opaque-credential")
	tasks, err := c.ListTasks(ctx, "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotAuth != "Bearer opaque-credential" {
		t.Fatalf("expected bearer forwarded, got %q", gotAuth)
	}
	if gotPath != "/projects/p1/tasks" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" || tasks[0].Priority != domain.PriorityHigh {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
}

func TestListTasksEmptyBodyYieldsEmptySlice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})
	tasks, err := c.ListTasks(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty slice, got %#v", tasks)
	}
}

func TestCreateTaskPostsDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/projects/p1/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var draft domain.TaskDraft
		data, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(data, &draft); err != nil {
			t.Errorf("bad draft payload: %v", err)
		}
		if draft.Title != "Design mockups" {
			t.Errorf("unexpected draft: %#v", draft)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"task":{"id":"42","title":"Design mockups","due_date":"2025-03-15","percent_completion":0,"priority":"medium"}}`)
	})

	task, err := c.CreateTask(context.Background(), "p1", domain.TaskDraft{
		Title:    "Design mockups",
		DueDate:  domain.NewDate(2025, time.March, 15),
		Priority: domain.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != "42" || task.PercentCompletion != 0 {
		t.Fatalf("unexpected task: %#v", task)
	}
}

func TestUpdateTaskSendsOnlyPopulatedFields(t *testing.T) {
	var body []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		io.WriteString(w, `{"task":{"id":"7","title":"t","due_date":"2025-03-15","percent_completion":50,"priority":"low"}}`)
	})

	pct := 50
	task, err := c.UpdateTask(context.Background(), "7", domain.TaskPatch{PercentCompletion: &pct})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if task.PercentCompletion != 50 {
		t.Fatalf("unexpected task: %#v", task)
	}
	if string(body) != `{"percent_completion":50}` {
		t.Fatalf("expected patch with only completion, got %s", body)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"no such task"}`)
	})

	err := c.DeleteTask(context.Background(), "gone")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.TaskID != "gone" {
		t.Fatalf("expected task id in error, got %#v", nf)
	}
}

func TestUpdateTaskBadRequestMapsToValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"percent_completion out of range"}`)
	})

	pct := 10
	_, err := c.UpdateTask(context.Background(), "7", domain.TaskPatch{PercentCompletion: &pct})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestServerErrorCarriesIntent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	pct := 10
	_, err := c.UpdateTask(context.Background(), "7", domain.TaskPatch{PercentCompletion: &pct})
	var remote *domain.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Op != "update" || remote.TaskID != "7" {
		t.Fatalf("expected intent on error, got %#v", remote)
	}
}

func TestTaskValidationNotFoundMeansNotStarted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	status, err := c.TaskValidation(context.Background(), "t1")
	if err != nil {
		t.Fatalf("validation: %v", err)
	}
	if status != domain.ValidationNotStarted {
		t.Fatalf("expected not_started, got %q", status)
	}
}

func TestTaskValidationStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/validation/tasks/t1/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"current_status":"validated"}`)
	})

	status, err := c.TaskValidation(context.Background(), "t1")
	if err != nil {
		t.Fatalf("validation: %v", err)
	}
	if status != domain.ValidationValidated {
		t.Fatalf("expected validated, got %q", status)
	}
}

func TestProjectMembers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"members":[{"user_id":"u1","name":"Alex","role":"BackEnd"}]}`)
	})

	members, err := c.ProjectMembers(context.Background(), "p1")
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].Role != domain.RoleBackEnd {
		t.Fatalf("unexpected members: %#v", members)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New("   ", time.Second); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
