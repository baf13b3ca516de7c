// Package session holds the per-user runtime state of the board: the explicit
// session object with its stores and live feed, the modal editor, and the
// drag-and-drop and keyboard input handling. Nothing here is ambient; every
// caller passes the session it is acting on.
package session

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"kanban-board/domain"
	"kanban-board/store"
)

// Session carries the state of one signed-in user. It owns the task mirror,
// the board catalog, the modal editor and the dragged-task reference, plus the
// cancel function releasing the live feed on teardown.
type Session struct {
	UserID string
	Tasks  *store.TaskStore
	Boards *store.BoardStore
	Editor *Editor

	mu          sync.Mutex
	editMu      sync.Mutex
	activeBoard string
	dragged     string
	cancel      context.CancelFunc
}

// ActiveBoard returns the board currently shown.
func (s *Session) ActiveBoard() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeBoard
}

// SetActiveBoard switches the shown board. Unknown ids fall back to the
// default board so the view never points at nothing.
func (s *Session) SetActiveBoard(boardID string) {
	if _, ok := s.Boards.Boards()[boardID]; !ok {
		boardID = domain.DefaultBoardID
	}
	s.mu.Lock()
	s.activeBoard = boardID
	s.mu.Unlock()
}

// DeleteBoard cascade-deletes a board: every task on it first, then the board
// document itself, so a failure never leaves the board without its tasks. The
// default board is always rejected. When the active board is removed the view
// falls back to the default board.
func (s *Session) DeleteBoard(ctx context.Context, boardID string) error {
	if boardID == domain.DefaultBoardID {
		return domain.ErrDefaultBoard
	}
	for _, t := range s.Tasks.GetTasksForBoard(boardID) {
		if err := s.Tasks.DeleteTask(ctx, t.ID); err != nil {
			return err
		}
	}
	if err := s.Boards.DeleteBoard(ctx, boardID); err != nil {
		return err
	}
	if s.ActiveBoard() == boardID {
		s.SetActiveBoard(domain.DefaultBoardID)
	}
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Manager creates and ends sessions, one per user id. Sessions are created on
// first use and live until sign-out.
type Manager struct {
	tasks  store.TaskPersistence
	boards store.BoardPersistence
	feed   store.Subscription

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager wires a manager over the remote store and the live feed.
func NewManager(tasks store.TaskPersistence, boards store.BoardPersistence, feed store.Subscription) *Manager {
	return &Manager{
		tasks:    tasks,
		boards:   boards,
		feed:     feed,
		sessions: map[string]*Session{},
	}
}

// Get returns the session for userID, creating it on first use. Creation
// loads the board catalog, subscribes the task mirror to the live feed and
// sets the active board to the default. A failed board load still yields a
// working session over the reseeded default board.
func (m *Manager) Get(ctx context.Context, userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}

	feedCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		UserID:      userID,
		Tasks:       store.NewTaskStore(m.tasks, m.feed, userID),
		Boards:      store.NewBoardStore(m.boards, userID),
		Editor:      &Editor{},
		activeBoard: domain.DefaultBoardID,
		cancel:      cancel,
	}
	if _, err := s.Boards.LoadBoards(ctx); err != nil {
		log.WithError(err).WithField("userId", userID).Error("Unable to load boards, continuing with default")
	}
	s.Tasks.Subscribe(feedCtx, nil)
	m.sessions[userID] = s
	return s
}

// End tears down the session for userID: the live feed is released and all
// per-user state is dropped. Unknown users are a no-op.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		s.release()
	}
}

// Reset ends the session and immediately builds a fresh one. Used when a
// partial teardown leaves state in doubt; a full rebuild is always safe.
func (m *Manager) Reset(ctx context.Context, userID string) *Session {
	m.End(userID)
	return m.Get(ctx, userID)
}
