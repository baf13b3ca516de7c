package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"kanban-board/domain"
)

type backend interface {
	FetchTasks(ctx context.Context, userID string) ([]domain.Task, error)
	UpsertTask(ctx context.Context, userID string, task domain.Task) error
	DeleteTask(ctx context.Context, userID, taskID string) error
	FetchBoards(ctx context.Context, userID string) ([]domain.Board, error)
	UpsertBoard(ctx context.Context, userID string, board domain.Board) error
	DeleteBoard(ctx context.Context, userID, boardID string) error
}

// Cache wraps a Storage instance with Redis-backed caching for read
// operations. Any write evicts the user's cached entries so the feed updater
// repopulates them from the tables.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Storage wrapper using the provided Redis client
// and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) FetchTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if tasks, ok := c.loadTasksFromCache(ctx, userID); ok {
		return tasks, nil
	}

	tasks, err := c.base.FetchTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.storeTasks(ctx, userID, tasks)
	return tasks, nil
}

func (c *Cache) UpsertTask(ctx context.Context, userID string, task domain.Task) error {
	if err := c.base.UpsertTask(ctx, userID, task); err != nil {
		return err
	}
	c.evictTasks(ctx, userID)
	return nil
}

func (c *Cache) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := c.base.DeleteTask(ctx, userID, taskID); err != nil {
		return err
	}
	c.evictTasks(ctx, userID)
	return nil
}

func (c *Cache) FetchBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	if boards, ok := c.loadBoardsFromCache(ctx, userID); ok {
		return boards, nil
	}

	boards, err := c.base.FetchBoards(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.storeBoards(ctx, userID, boards)
	return boards, nil
}

func (c *Cache) UpsertBoard(ctx context.Context, userID string, board domain.Board) error {
	if err := c.base.UpsertBoard(ctx, userID, board); err != nil {
		return err
	}
	c.evictBoards(ctx, userID)
	return nil
}

func (c *Cache) DeleteBoard(ctx context.Context, userID, boardID string) error {
	if err := c.base.DeleteBoard(ctx, userID, boardID); err != nil {
		return err
	}
	c.evictBoards(ctx, userID)
	return nil
}

func (c *Cache) loadTasksFromCache(ctx context.Context, userID string) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, TasksCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, TasksCacheKey(userID)).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, TasksCacheKey(userID)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) loadBoardsFromCache(ctx context.Context, userID string) ([]domain.Board, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, BoardsCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, BoardsCacheKey(userID)).Err()
		}
		return nil, false
	}
	var boards []domain.Board
	if err := json.Unmarshal(data, &boards); err != nil {
		_ = c.redis.Del(ctx, BoardsCacheKey(userID)).Err()
		return nil, false
	}
	return boards, true
}

func (c *Cache) storeTasks(ctx context.Context, userID string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, TasksCacheKey(userID), data, c.ttl).Err()
}

func (c *Cache) storeBoards(ctx context.Context, userID string, boards []domain.Board) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(boards)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, BoardsCacheKey(userID), data, c.ttl).Err()
}

func (c *Cache) evictTasks(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, TasksCacheKey(userID)).Result()
}

func (c *Cache) evictBoards(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, BoardsCacheKey(userID)).Result()
}

// TasksCacheKey names the cached task snapshot for a user. The feed updater
// shares this key when refreshing the read model.
func TasksCacheKey(userID string) string {
	return "tasks:" + userID
}

// BoardsCacheKey names the cached board list for a user.
func BoardsCacheKey(userID string) string {
	return "boards:" + userID
}
