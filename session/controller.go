package session

import (
	"context"
	"strings"

	"kanban-board/domain"
)

// Intent is what a key press asks the caller to do next when the action needs
// more input than the controller has, such as opening the editor or asking the
// user to confirm a delete.
type Intent int

const (
	IntentNone Intent = iota
	IntentEdit
	IntentConfirmDelete
)

// DropStatus resolves a column container id of the form "<status>-list" to its
// status. Anything else reports false.
func DropStatus(containerID string) (domain.Status, bool) {
	name, found := strings.CutSuffix(containerID, "-list")
	if !found {
		return "", false
	}
	return domain.ParseStatus(name)
}

// StartDrag records the task being dragged. Unknown ids are ignored so a
// stale card in the view can never become a dangling reference.
func (s *Session) StartDrag(taskID string) {
	if _, ok := s.Tasks.Get(taskID); !ok {
		return
	}
	s.mu.Lock()
	s.dragged = taskID
	s.mu.Unlock()
}

// EndDrag clears the dragged-task reference. Called on every exit path of a
// drag, including aborted ones.
func (s *Session) EndDrag() {
	s.mu.Lock()
	s.dragged = ""
	s.mu.Unlock()
}

// DraggedTask returns the id recorded by StartDrag, or "".
func (s *Session) DraggedTask() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragged
}

// Drop moves the dragged task into the column identified by containerID. The
// dragged reference is cleared whether or not the drop lands on a valid
// column or a task is being dragged at all.
func (s *Session) Drop(ctx context.Context, containerID string) error {
	taskID := s.DraggedTask()
	s.EndDrag()
	if taskID == "" {
		return nil
	}
	status, ok := DropStatus(containerID)
	if !ok {
		return nil
	}
	return s.Tasks.UpdateStatus(ctx, taskID, status)
}

// HandleKey maps a key pressed while a task card is focused to its action.
// Digits move the task directly; e asks for the editor; Delete and Backspace
// ask for a confirmed delete. Everything else is ignored.
func (s *Session) HandleKey(ctx context.Context, taskID, key string) (Intent, error) {
	switch key {
	case "1":
		return IntentNone, s.Tasks.UpdateStatus(ctx, taskID, domain.StatusTodo)
	case "2":
		return IntentNone, s.Tasks.UpdateStatus(ctx, taskID, domain.StatusInProgress)
	case "3":
		return IntentNone, s.Tasks.UpdateStatus(ctx, taskID, domain.StatusDone)
	case "e", "E":
		return IntentEdit, nil
	case "Delete", "Backspace":
		return IntentConfirmDelete, nil
	}
	return IntentNone, nil
}

// Archive moves a task into the archive column.
func (s *Session) Archive(ctx context.Context, taskID string) error {
	return s.Tasks.UpdateStatus(ctx, taskID, domain.StatusArchive)
}

// Unarchive restores an archived task. Restored tasks always land in the todo
// column regardless of where they were archived from.
func (s *Session) Unarchive(ctx context.Context, taskID string) error {
	return s.Tasks.UpdateStatus(ctx, taskID, domain.StatusTodo)
}
