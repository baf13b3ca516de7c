package session

import (
	"context"
	"strings"
	"sync/atomic"

	"kanban-board/domain"
)

// TaskSaver persists a task as a whole document.
type TaskSaver interface {
	SaveTask(ctx context.Context, task domain.Task) (domain.Task, error)
}

// Editor is the modal working state for creating or editing one task. Fields
// are edited freely; nothing touches the stores until Save.
type Editor struct {
	open    bool
	saving  int32
	taskID  string
	created string

	Title       string
	Description string
	DueDate     string
	DueTime     string
	Tags        []domain.Tag
	Subtasks    []domain.Subtask
	Status      domain.Status
	Board       string
}

// Open loads an existing task into the editor. A stored due value with a time
// component is split into its date and HH:MM parts for separate inputs.
func (e *Editor) Open(task domain.Task) {
	date, clock := splitDue(task.Due)
	e.reset()
	e.open = true
	e.taskID = task.ID
	e.created = task.Created
	e.Title = task.Title
	e.Description = task.Description
	e.DueDate = date
	e.DueTime = clock
	e.Tags = append([]domain.Tag(nil), task.Tags...)
	e.Subtasks = append([]domain.Subtask(nil), task.Subtasks...)
	e.Status = task.Status
	e.Board = task.Board
}

// OpenNew prepares the editor for a fresh task on the given board and column.
func (e *Editor) OpenNew(boardID string, status domain.Status) {
	e.reset()
	e.open = true
	e.Status = status
	e.Board = boardID
}

// Close discards the working state.
func (e *Editor) Close() {
	e.reset()
}

// reset clears the working state without touching the saving guard, so
// reopening the editor never releases a save still in flight.
func (e *Editor) reset() {
	e.open = false
	e.taskID = ""
	e.created = ""
	e.Title = ""
	e.Description = ""
	e.DueDate = ""
	e.DueTime = ""
	e.Tags = nil
	e.Subtasks = nil
	e.Status = ""
	e.Board = ""
}

// IsOpen reports whether the editor currently holds working state.
func (e *Editor) IsOpen() bool {
	return e.open
}

// AddTag appends a tag to the working list. Blank text and duplicate text are
// no-ops; the tag type cycles through the known types by position.
func (e *Editor) AddTag(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, t := range e.Tags {
		if t.Text == text {
			return
		}
	}
	e.Tags = append(e.Tags, domain.Tag{
		Text: text,
		Type: domain.TagTypes[len(e.Tags)%len(domain.TagTypes)],
	})
}

// RemoveTag drops the tag at index. Out-of-range indexes are no-ops.
func (e *Editor) RemoveTag(index int) {
	if index < 0 || index >= len(e.Tags) {
		return
	}
	e.Tags = append(e.Tags[:index], e.Tags[index+1:]...)
}

// AddSubtask appends a checklist entry. Blank text is a no-op.
func (e *Editor) AddSubtask(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	e.Subtasks = append(e.Subtasks, domain.Subtask{Text: text})
}

// RemoveSubtask drops the entry at index. Out-of-range indexes are no-ops.
func (e *Editor) RemoveSubtask(index int) {
	if index < 0 || index >= len(e.Subtasks) {
		return
	}
	e.Subtasks = append(e.Subtasks[:index], e.Subtasks[index+1:]...)
}

// Save validates the working state and writes the task as one document. The
// editor stays open when validation fails so the user can correct the input.
// A save already in flight makes further calls no-ops until it finishes, so a
// double submit never writes twice.
func (e *Editor) Save(ctx context.Context, tasks TaskSaver) (domain.Task, error) {
	if !atomic.CompareAndSwapInt32(&e.saving, 0, 1) {
		return domain.Task{}, nil
	}
	defer atomic.StoreInt32(&e.saving, 0)

	title, err := domain.ValidateTitle(e.Title)
	if err != nil {
		return domain.Task{}, err
	}
	description, err := domain.ValidateDescription(e.Description)
	if err != nil {
		return domain.Task{}, err
	}
	tags, err := domain.ValidateTags(e.Tags)
	if err != nil {
		return domain.Task{}, err
	}
	subtasks, err := domain.ValidateSubtasks(e.Subtasks)
	if err != nil {
		return domain.Task{}, err
	}

	status := e.Status
	if _, ok := domain.ParseStatus(string(status)); !ok {
		status = domain.StatusTodo
	}
	board := e.Board
	if board == "" {
		board = domain.DefaultBoardID
	}

	saved, err := tasks.SaveTask(ctx, domain.Task{
		ID:          e.taskID,
		Title:       title,
		Description: description,
		Due:         combineDue(e.DueDate, e.DueTime),
		Tags:        tags,
		Subtasks:    subtasks,
		Status:      status,
		Board:       board,
		Created:     e.created,
	})
	if err != nil {
		return domain.Task{}, err
	}
	e.Close()
	return saved, nil
}

// TaskDraft is one submitted working state for the session editor. A zero
// TaskID means a new task; an unknown status falls back to todo in Save.
type TaskDraft struct {
	TaskID      string
	Title       string
	Description string
	DueDate     string
	DueTime     string
	Tags        []domain.Tag
	Subtasks    []domain.Subtask
	Status      string
	Board       string
}

// SubmitTask stages the draft in the session's editor and saves it through
// the task store. Submits on one session are serialized, and a save already
// in flight reports the submit as a duplicate without writing. Editing an
// existing task keeps its id and created date.
func (s *Session) SubmitTask(ctx context.Context, draft TaskDraft) (domain.Task, bool, error) {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	e := s.Editor
	if existing, ok := s.Tasks.Get(draft.TaskID); ok {
		e.Open(existing)
	} else {
		status, _ := domain.ParseStatus(draft.Status)
		e.OpenNew(draft.Board, status)
	}
	e.Title = draft.Title
	e.Description = draft.Description
	e.DueDate = draft.DueDate
	e.DueTime = draft.DueTime
	e.Tags = draft.Tags
	e.Subtasks = draft.Subtasks
	if status, ok := domain.ParseStatus(draft.Status); ok {
		e.Status = status
	}
	if draft.Board != "" {
		e.Board = draft.Board
	}

	saved, err := e.Save(ctx, s.Tasks)
	if err != nil {
		return domain.Task{}, false, err
	}
	if saved.ID == "" {
		return domain.Task{}, true, nil
	}
	return saved, false, nil
}

func splitDue(due string) (date, clock string) {
	date, rest, found := strings.Cut(due, "T")
	if !found {
		return due, ""
	}
	if len(rest) > 5 {
		rest = rest[:5]
	}
	return date, rest
}

func combineDue(date, clock string) string {
	if date == "" {
		return ""
	}
	if clock == "" {
		return date
	}
	return date + "T" + clock + ":00"
}
