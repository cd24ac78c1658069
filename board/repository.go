package board

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"teambrains-board/domain"
	"teambrains-board/planification"
)

// Client is the slice of the planification service the repository writes
// through.
type Client interface {
	ListTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	CreateTask(ctx context.Context, projectID string, draft domain.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}

type mutationKind string

const (
	mutationUpdate mutationKind = "update"
	mutationDelete mutationKind = "delete"
)

type mutation struct {
	id        string
	kind      mutationKind
	taskID    string
	patch     domain.TaskPatch
	token     string
	timestamp int64
}

// Failure records a remote write that did not land. The optimistic local
// state is kept as-is; the caller decides whether to retry or refresh.
type Failure struct {
	MutationID string    `json:"mutation_id"`
	Seq        int64     `json:"seq"`
	Op         string    `json:"op"`
	TaskID     string    `json:"task_id"`
	Error      string    `json:"error"`
	At         time.Time `json:"at"`
}

const failureFeedCap = 64

// Repository owns the authoritative in-memory task set for one project.
// Reads hand out snapshots; mutations validate first, apply optimistically
// and persist through a single background writer so remote writes for a
// project stay in issue order.
type Repository struct {
	projectID string
	client    Client
	logger    *log.Logger

	mu          sync.RWMutex
	tasks       []domain.Task
	loaded      bool
	lastRefresh time.Time
	failures    []Failure
	subs        []chan struct{}

	writeCh      chan mutation
	writeTimeout time.Duration
	writerWG     sync.WaitGroup
	closeOnce    sync.Once
}

// NewRepository creates and starts a repository for one project.
func NewRepository(projectID string, client Client, logger *log.Logger) *Repository {
	if client == nil {
		panic("board.NewRepository: client is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	r := &Repository{
		projectID:    projectID,
		client:       client,
		logger:       logger,
		tasks:        []domain.Task{},
		writeCh:      make(chan mutation, 256),
		writeTimeout: 30 * time.Second,
	}
	r.writerWG.Add(1)
	go r.writer()
	return r
}

// Close stops the background writer after draining pending mutations.
func (r *Repository) Close() {
	r.closeOnce.Do(func() {
		close(r.writeCh)
	})
	r.writerWG.Wait()
}

// Refresh replaces the task set with the full list from the planification
// service.
func (r *Repository) Refresh(ctx context.Context) error {
	tasks, err := r.client.ListTasks(ctx, r.projectID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.tasks = tasks
	r.loaded = true
	r.lastRefresh = time.Now()
	r.mu.Unlock()
	r.notify()
	return nil
}

// Stale reports whether the repository has never loaded or its last refresh
// is older than maxAge.
func (r *Repository) Stale(maxAge time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.loaded || time.Since(r.lastRefresh) > maxAge
}

// List returns a snapshot copy of the task set.
func (r *Repository) List() []domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Get returns the task with the given ID.
func (r *Repository) Get(id string) (domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// Create validates the draft and submits it to the planification service;
// the stored task, with its server-assigned ID, joins the set on success.
// Unlike updates, creation is not optimistic: there is no identity to track
// until the service assigns one.
func (r *Repository) Create(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	if draft.Priority == "" {
		draft.Priority = domain.PriorityMedium
	}
	if err := draft.Validate(); err != nil {
		return domain.Task{}, err
	}
	task, err := r.client.CreateTask(ctx, r.projectID, draft)
	if err != nil {
		return domain.Task{}, err
	}
	r.mu.Lock()
	r.tasks = append(r.tasks, task)
	r.mu.Unlock()
	r.notify()
	return task, nil
}

// Update validates the patch, applies it to the local entry and queues the
// remote write. The returned task reflects the optimistic state.
func (r *Repository) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return domain.Task{}, err
	}
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return domain.Task{}, &domain.NotFoundError{TaskID: id}
	}
	updated := patch.ApplyTo(r.tasks[idx])
	r.tasks[idx] = updated
	r.mu.Unlock()

	r.dispatch(ctx, mutation{kind: mutationUpdate, taskID: id, patch: patch})
	r.notify()
	return updated, nil
}

// Delete removes the task locally and queues the remote delete.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	idx := r.indexLocked(id)
	if idx < 0 {
		r.mu.Unlock()
		return &domain.NotFoundError{TaskID: id}
	}
	r.tasks = append(r.tasks[:idx:idx], r.tasks[idx+1:]...)
	r.mu.Unlock()

	r.dispatch(ctx, mutation{kind: mutationDelete, taskID: id})
	r.notify()
	return nil
}

// Transition applies a drag onto target. It reports false without touching
// anything when the task already renders in that column.
func (r *Repository) Transition(ctx context.Context, id string, target domain.Column) (domain.Task, bool, error) {
	task, ok := r.Get(id)
	if !ok {
		return domain.Task{}, false, &domain.NotFoundError{TaskID: id}
	}
	patch, changed := domain.TransitionPatch(task, target)
	if !changed {
		return task, false, nil
	}
	updated, err := r.Update(ctx, id, patch)
	if err != nil {
		return domain.Task{}, false, err
	}
	return updated, true, nil
}

// Failures drains the recorded remote-write failures.
func (r *Repository) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.failures
	r.failures = nil
	return out
}

// Subscribe returns a channel that receives a tick after every change to
// the task set. Ticks coalesce; a slow reader sees at least one.
func (r *Repository) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}

func (r *Repository) indexLocked(id string) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) notify() {
	r.mu.RLock()
	subs := r.subs
	r.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *Repository) dispatch(ctx context.Context, m mutation) {
	m.id = uuid.NewString()
	m.token = planification.Token(ctx)
	m.timestamp = nextTimestamp()
	select {
	case r.writeCh <- m:
	default:
		// Writer backlog is full; run the remote write inline rather than
		// drop it.
		r.logger.WithFields(log.Fields{
			"project": r.projectID,
			"task":    m.taskID,
		}).Warn("write buffer saturated; persisting inline")
		r.perform(m)
	}
}

func (r *Repository) writer() {
	defer r.writerWG.Done()
	for m := range r.writeCh {
		r.perform(m)
	}
}

func (r *Repository) perform(m mutation) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()
	ctx = planification.WithToken(ctx, m.token)

	switch m.kind {
	case mutationUpdate:
		stored, err := r.client.UpdateTask(ctx, m.taskID, m.patch)
		if err != nil {
			r.recordFailure(m, err)
			return
		}
		// Re-sync the entry with what the service stored. The entry is
		// replaced by identity; a task deleted meanwhile is not resurrected.
		r.mu.Lock()
		if idx := r.indexLocked(m.taskID); idx >= 0 {
			r.tasks[idx] = stored
		}
		r.mu.Unlock()
		r.notify()
	case mutationDelete:
		if err := r.client.DeleteTask(ctx, m.taskID); err != nil {
			r.recordFailure(m, err)
		}
	}
}

func (r *Repository) recordFailure(m mutation, err error) {
	r.logger.WithFields(log.Fields{
		"project":  r.projectID,
		"task":     m.taskID,
		"op":       string(m.kind),
		"mutation": m.id,
	}).Errorf("remote write failed: %v", err)

	r.mu.Lock()
	r.failures = append(r.failures, Failure{
		MutationID: m.id,
		Seq:        m.timestamp,
		Op:         string(m.kind),
		TaskID:     m.taskID,
		Error:      err.Error(),
		At:         time.Now(),
	})
	if len(r.failures) > failureFeedCap {
		r.failures = r.failures[len(r.failures)-failureFeedCap:]
	}
	r.mu.Unlock()
	r.notify()
}
