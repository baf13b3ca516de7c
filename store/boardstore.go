package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kanban-board/domain"
)

// BoardPersistence is the remote document boundary for boards.
type BoardPersistence interface {
	FetchBoards(ctx context.Context, userID string) ([]domain.Board, error)
	UpsertBoard(ctx context.Context, userID string, board domain.Board) error
	DeleteBoard(ctx context.Context, userID, boardID string) error
}

// BoardStore owns the board mapping for one user. The default board entry is
// reseeded on every load so it can never be lost, even when storage is empty
// or corrupted.
type BoardStore struct {
	userID  string
	persist BoardPersistence

	mu     sync.RWMutex
	boards map[string]domain.Board
}

// NewBoardStore creates a store for the given user, seeded with the default
// board.
func NewBoardStore(persist BoardPersistence, userID string) *BoardStore {
	s := &BoardStore{userID: userID, persist: persist}
	s.reseed()
	return s
}

func (s *BoardStore) reseed() {
	s.mu.Lock()
	s.boards = map[string]domain.Board{
		domain.DefaultBoardID: {ID: domain.DefaultBoardID, Name: domain.DefaultBoardName},
	}
	s.mu.Unlock()
}

// LoadBoards fetches all board documents and merges them over the reseeded
// default entry.
func (s *BoardStore) LoadBoards(ctx context.Context) (map[string]domain.Board, error) {
	s.reseed()
	fetched, err := s.persist.FetchBoards(ctx, s.userID)
	if err != nil {
		return s.Boards(), domain.WrapPersistence(err)
	}
	s.mu.Lock()
	for _, b := range fetched {
		s.boards[b.ID] = b
	}
	s.mu.Unlock()
	return s.Boards(), nil
}

// CreateBoard validates the name, persists a new board document and returns
// its identifier. Identifiers are derived from the creation time, matching
// the stored format consumers already depend on.
func (s *BoardStore) CreateBoard(ctx context.Context, name string) (string, error) {
	validName, err := domain.ValidateBoardName(name)
	if err != nil {
		return "", err
	}
	board := domain.Board{
		ID:   fmt.Sprintf("board_%d", time.Now().UnixMilli()),
		Name: validName,
	}
	if err := s.persist.UpsertBoard(ctx, s.userID, board); err != nil {
		return "", domain.WrapPersistence(err)
	}
	s.mu.Lock()
	s.boards[board.ID] = board
	s.mu.Unlock()
	return board.ID, nil
}

// DeleteBoard removes a board document. The default board is always rejected.
// Cascade-deleting the board's tasks is coordinated by the caller before this
// call so no orphaned-task window opens.
func (s *BoardStore) DeleteBoard(ctx context.Context, boardID string) error {
	if boardID == domain.DefaultBoardID {
		return domain.ErrDefaultBoard
	}
	if err := s.persist.DeleteBoard(ctx, s.userID, boardID); err != nil {
		return domain.WrapPersistence(err)
	}
	s.mu.Lock()
	delete(s.boards, boardID)
	s.mu.Unlock()
	return nil
}

// Boards returns a snapshot of the board mapping.
func (s *BoardStore) Boards() map[string]domain.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Board, len(s.boards))
	for id, b := range s.boards {
		out[id] = b
	}
	return out
}
