package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"kanban-board/domain"
)

type stubBackend struct {
	fetchTasksFn  func(ctx context.Context, userID string) ([]domain.Task, error)
	upsertTaskFn  func(ctx context.Context, userID string, task domain.Task) error
	deleteTaskFn  func(ctx context.Context, userID, taskID string) error
	fetchBoardsFn func(ctx context.Context, userID string) ([]domain.Board, error)
	upsertBoardFn func(ctx context.Context, userID string, board domain.Board) error
	deleteBoardFn func(ctx context.Context, userID, boardID string) error
}

func (s *stubBackend) FetchTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	if s.fetchTasksFn == nil {
		return nil, errors.New("unexpected FetchTasks call")
	}
	return s.fetchTasksFn(ctx, userID)
}

func (s *stubBackend) UpsertTask(ctx context.Context, userID string, task domain.Task) error {
	if s.upsertTaskFn == nil {
		return errors.New("unexpected UpsertTask call")
	}
	return s.upsertTaskFn(ctx, userID, task)
}

func (s *stubBackend) DeleteTask(ctx context.Context, userID, taskID string) error {
	if s.deleteTaskFn == nil {
		return errors.New("unexpected DeleteTask call")
	}
	return s.deleteTaskFn(ctx, userID, taskID)
}

func (s *stubBackend) FetchBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	if s.fetchBoardsFn == nil {
		return nil, errors.New("unexpected FetchBoards call")
	}
	return s.fetchBoardsFn(ctx, userID)
}

func (s *stubBackend) UpsertBoard(ctx context.Context, userID string, board domain.Board) error {
	if s.upsertBoardFn == nil {
		return errors.New("unexpected UpsertBoard call")
	}
	return s.upsertBoardFn(ctx, userID, board)
}

func (s *stubBackend) DeleteBoard(ctx context.Context, userID, boardID string) error {
	if s.deleteBoardFn == nil {
		return errors.New("unexpected DeleteBoard call")
	}
	return s.deleteBoardFn(ctx, userID, boardID)
}

func newTestCache(t *testing.T, base backend) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(base, client, time.Minute), mr
}

func TestCacheFetchTasksMissThenHit(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"
	expected := []domain.Task{{ID: "t1", Title: "Write code", Tags: []domain.Tag{}, Subtasks: []domain.Subtask{}}}

	var calls int
	cache, mr := newTestCache(t, &stubBackend{
		fetchTasksFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			calls++
			if uid != userID {
				t.Fatalf("unexpected user id: %s", uid)
			}
			return append([]domain.Task(nil), expected...), nil
		},
	})

	tasks, err := cache.FetchTasks(ctx, userID)
	if err != nil {
		t.Fatalf("fetch tasks: %v", err)
	}
	if !reflect.DeepEqual(tasks, expected) {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call to backend, got %d", calls)
	}
	if ttl := mr.TTL(TasksCacheKey(userID)); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	cached, err := cache.FetchTasks(ctx, userID)
	if err != nil {
		t.Fatalf("fetch cached tasks: %v", err)
	}
	if !reflect.DeepEqual(cached, expected) {
		t.Fatalf("unexpected cached tasks: %#v", cached)
	}
	if calls != 1 {
		t.Fatalf("expected cached fetch to avoid backend, calls=%d", calls)
	}
}

func TestCacheUpsertTaskEvicts(t *testing.T) {
	ctx := context.Background()
	userID := "user-2"

	cache, mr := newTestCache(t, &stubBackend{
		upsertTaskFn: func(ctx context.Context, uid string, task domain.Task) error { return nil },
	})
	mr.Set(TasksCacheKey(userID), `[{"id":"stale"}]`)

	if err := cache.UpsertTask(ctx, userID, domain.Task{ID: "t1", Title: "x"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if mr.Exists(TasksCacheKey(userID)) {
		t.Fatal("expected task cache eviction after upsert")
	}
}

func TestCacheUpsertTaskFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	userID := "user-3"
	wantErr := errors.New("table down")

	cache, mr := newTestCache(t, &stubBackend{
		upsertTaskFn: func(ctx context.Context, uid string, task domain.Task) error { return wantErr },
	})
	mr.Set(TasksCacheKey(userID), `[{"id":"t1"}]`)

	if err := cache.UpsertTask(ctx, userID, domain.Task{ID: "t1"}); !errors.Is(err, wantErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if !mr.Exists(TasksCacheKey(userID)) {
		t.Fatal("cache should survive a failed write")
	}
}

func TestCacheFetchTasksCorruptEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	userID := "user-4"
	expected := []domain.Task{{ID: "t1", Tags: []domain.Tag{}, Subtasks: []domain.Subtask{}}}

	cache, mr := newTestCache(t, &stubBackend{
		fetchTasksFn: func(ctx context.Context, uid string) ([]domain.Task, error) {
			return append([]domain.Task(nil), expected...), nil
		},
	})
	mr.Set(TasksCacheKey(userID), "{not json")

	tasks, err := cache.FetchTasks(ctx, userID)
	if err != nil {
		t.Fatalf("fetch tasks: %v", err)
	}
	if !reflect.DeepEqual(tasks, expected) {
		t.Fatalf("unexpected tasks: %#v", tasks)
	}
}

func TestCacheBoardsMissThenEvictOnDelete(t *testing.T) {
	ctx := context.Background()
	userID := "user-5"
	expected := []domain.Board{{ID: "board_1", Name: "Sprint"}}

	var fetches int
	cache, mr := newTestCache(t, &stubBackend{
		fetchBoardsFn: func(ctx context.Context, uid string) ([]domain.Board, error) {
			fetches++
			return append([]domain.Board(nil), expected...), nil
		},
		deleteBoardFn: func(ctx context.Context, uid, boardID string) error { return nil },
	})

	boards, err := cache.FetchBoards(ctx, userID)
	if err != nil {
		t.Fatalf("fetch boards: %v", err)
	}
	if !reflect.DeepEqual(boards, expected) {
		t.Fatalf("unexpected boards: %#v", boards)
	}
	if _, err := cache.FetchBoards(ctx, userID); err != nil {
		t.Fatalf("fetch cached boards: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("expected one backend fetch, got %d", fetches)
	}

	if err := cache.DeleteBoard(ctx, userID, "board_1"); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if mr.Exists(BoardsCacheKey(userID)) {
		t.Fatal("expected board cache eviction after delete")
	}
}
