// Package store owns the canonical in-memory state for a signed-in user: the
// task mirror kept in sync by the live feed, and the board mapping. Other
// components read this state; only the stores mutate it.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"kanban-board/domain"
)

// TaskPersistence is the remote document boundary for tasks.
type TaskPersistence interface {
	FetchTasks(ctx context.Context, userID string) ([]domain.Task, error)
	UpsertTask(ctx context.Context, userID string, task domain.Task) error
	DeleteTask(ctx context.Context, userID, taskID string) error
}

// Subscription establishes a live feed of full task snapshots.
type Subscription interface {
	Subscribe(ctx context.Context, userID string, onChange func([]domain.Task))
}

// TaskStore owns the authoritative in-memory task list for one user. The list
// is only ever replaced wholesale by feed pushes; writes go to the remote
// store and come back through the feed.
type TaskStore struct {
	userID  string
	persist TaskPersistence
	feed    Subscription

	mu    sync.RWMutex
	tasks []domain.Task
}

// NewTaskStore creates a store for the given user.
func NewTaskStore(persist TaskPersistence, feed Subscription, userID string) *TaskStore {
	return &TaskStore{userID: userID, persist: persist, feed: feed}
}

// Subscribe starts the live feed. Every push replaces the entire local cache
// and then invokes onChange with the new list. The subscription is released
// when ctx is cancelled; callers must cancel on session teardown.
func (s *TaskStore) Subscribe(ctx context.Context, onChange func([]domain.Task)) {
	go s.feed.Subscribe(ctx, s.userID, func(tasks []domain.Task) {
		s.mu.Lock()
		s.tasks = tasks
		s.mu.Unlock()
		if onChange != nil {
			onChange(tasks)
		}
	})
}

// SaveTask persists the task as a complete document. A task without an id
// gets a fresh one; optional fields are normalized so no field is ever absent.
// The saved task is returned with its assigned id.
func (s *TaskStore) SaveTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	task.Normalize()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Created == "" {
		task.Created = time.Now().UTC().Format(time.RFC3339)
	}
	if err := s.persist.UpsertTask(ctx, s.userID, task); err != nil {
		return domain.Task{}, domain.WrapPersistence(err)
	}
	return task, nil
}

// DeleteTask removes the remote document. The local cache updates only via
// the live feed, never optimistically.
func (s *TaskStore) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.persist.DeleteTask(ctx, s.userID, taskID); err != nil {
		return domain.WrapPersistence(err)
	}
	return nil
}

// UpdateStatus sets the status of a cached task and writes the whole document
// back. An unknown id is a no-op.
func (s *TaskStore) UpdateStatus(ctx context.Context, taskID string, status domain.Status) error {
	task, ok := s.find(taskID)
	if !ok {
		return nil
	}
	task.Status = status
	_, err := s.SaveTask(ctx, task)
	return err
}

// ToggleSubtask flips the completion flag of one subtask and writes the whole
// document back. Unknown ids and out-of-range indexes are no-ops.
func (s *TaskStore) ToggleSubtask(ctx context.Context, taskID string, index int) error {
	task, ok := s.find(taskID)
	if !ok || index < 0 || index >= len(task.Subtasks) {
		return nil
	}
	task.Subtasks[index].Completed = !task.Subtasks[index].Completed
	_, err := s.SaveTask(ctx, task)
	return err
}

// Tasks returns a snapshot of the full local cache.
func (s *TaskStore) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Task(nil), s.tasks...)
}

// Get returns a copy of the cached task with the given id.
func (s *TaskStore) Get(taskID string) (domain.Task, bool) {
	return s.find(taskID)
}

// GetTasksForBoard filters the local cache by board. No side effects.
func (s *TaskStore) GetTasksForBoard(boardID string) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Task{}
	for _, t := range s.tasks {
		if t.Board == boardID {
			out = append(out, t)
		}
	}
	return out
}

// GetTasksByStatus filters the local cache by board and status.
func (s *TaskStore) GetTasksByStatus(boardID string, status domain.Status) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Task{}
	for _, t := range s.tasks {
		if t.Board == boardID && t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (s *TaskStore) find(taskID string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == taskID {
			return t.Clone(), true
		}
	}
	return domain.Task{}, false
}
