package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"teambrains-board/domain"
)

// Source is the slice of the planification client the cache reads through.
type Source interface {
	TaskValidation(ctx context.Context, taskID string) (domain.ValidationStatus, error)
	ProjectMembers(ctx context.Context, projectID string) ([]domain.Member, error)
}

// Cache wraps the planification client with Redis-backed caching for the
// validation overlay and member rosters. Cache trouble is never fatal:
// misses and redis errors fall through to the backing service.
type Cache struct {
	base  Source
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper. A nil redis client disables caching
// and every read goes straight to base.
func NewCache(base Source, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base source is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

// TaskValidation returns the review status for one task, served from cache
// when possible.
func (c *Cache) TaskValidation(ctx context.Context, taskID string) (domain.ValidationStatus, error) {
	if status, ok := c.loadValidation(ctx, taskID); ok {
		return status, nil
	}
	status, err := c.base.TaskValidation(ctx, taskID)
	if err != nil {
		return "", err
	}
	c.storeValidation(ctx, taskID, status)
	return status, nil
}

// ValidationStatuses resolves the overlay for every task at 100%
// completion. Statuses that cannot be fetched are simply absent; the board
// renders without them rather than failing.
func (c *Cache) ValidationStatuses(ctx context.Context, tasks []domain.Task) map[string]domain.ValidationStatus {
	statuses := make(map[string]domain.ValidationStatus)
	for _, t := range tasks {
		if t.PercentCompletion != 100 {
			continue
		}
		status, err := c.TaskValidation(ctx, t.ID)
		if err != nil {
			continue
		}
		statuses[t.ID] = status
	}
	return statuses
}

// ProjectMembers returns the member roster, served from cache when possible.
func (c *Cache) ProjectMembers(ctx context.Context, projectID string) ([]domain.Member, error) {
	if members, ok := c.loadMembers(ctx, projectID); ok {
		return members, nil
	}
	members, err := c.base.ProjectMembers(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.storeMembers(ctx, projectID, members)
	return members, nil
}

// EvictTask drops the cached review status after a task mutation, since a
// completion change can reset the validation cycle.
func (c *Cache) EvictTask(ctx context.Context, taskID string) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, validationKey(taskID)).Err()
}

func (c *Cache) loadValidation(ctx context.Context, taskID string) (domain.ValidationStatus, bool) {
	if c.redis == nil {
		return "", false
	}
	raw, err := c.redis.Get(ctx, validationKey(taskID)).Result()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, validationKey(taskID)).Err()
		}
		return "", false
	}
	return domain.ValidationStatus(raw), true
}

func (c *Cache) storeValidation(ctx context.Context, taskID string, status domain.ValidationStatus) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	_ = c.redis.Set(ctx, validationKey(taskID), string(status), c.ttl).Err()
}

func (c *Cache) loadMembers(ctx context.Context, projectID string) ([]domain.Member, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, membersKey(projectID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, membersKey(projectID)).Err()
		}
		return nil, false
	}
	var members []domain.Member
	if err := sonic.Unmarshal(data, &members); err != nil {
		_ = c.redis.Del(ctx, membersKey(projectID)).Err()
		return nil, false
	}
	return members, true
}

func (c *Cache) storeMembers(ctx context.Context, projectID string, members []domain.Member) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(members)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, membersKey(projectID), data, c.ttl).Err()
}

func validationKey(taskID string) string {
	return "validation:" + taskID
}

func membersKey(projectID string) string {
	return "members:" + projectID
}
