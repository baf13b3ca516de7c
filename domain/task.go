package domain

// Status is one of the four fixed board columns a task can occupy.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
	StatusArchive    Status = "archive"
)

// Statuses lists the columns in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusArchive}

// ParseStatus returns the status matching s, or false when s is not a known column.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusDone, StatusArchive:
		return Status(s), true
	}
	return "", false
}

// QuickAction returns the one-click forward transition for a status. Archive
// cards expose no quick action.
func (s Status) QuickAction() (Status, bool) {
	switch s {
	case StatusTodo:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusDone, true
	case StatusDone:
		return StatusTodo, true
	}
	return "", false
}

// Tag types recognized on task tags. Anything else coerces to TagOther.
const (
	TagWork     = "work"
	TagPersonal = "personal"
	TagUrgent   = "urgent"
	TagOther    = "other"
)

// TagTypes lists the known tag types in the order used for cycling on add.
var TagTypes = []string{TagWork, TagPersonal, TagUrgent, TagOther}

// Tag is a short label attached to a task.
type Tag struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Subtask is a single checklist entry on a task.
type Subtask struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task represents a single board item. All optional fields are stored as their
// empty equivalents so persisted documents always carry every field.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Due         string    `json:"due"`
	Tags        []Tag     `json:"tags"`
	Subtasks    []Subtask `json:"subtasks"`
	Status      Status    `json:"status"`
	Board       string    `json:"board"`
	Created     string    `json:"created"`
}

// Normalize fills nil collections and empty optionals so the task can be
// written as a complete document.
func (t *Task) Normalize() {
	if t.Tags == nil {
		t.Tags = []Tag{}
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the cache.
func (t Task) Clone() Task {
	cp := t
	cp.Tags = append([]Tag(nil), t.Tags...)
	cp.Subtasks = append([]Subtask(nil), t.Subtasks...)
	return cp
}

// DefaultBoardID is the identifier of the board that always exists and can
// never be removed.
const DefaultBoardID = "default"

// DefaultBoardName names the board seeded for every user.
const DefaultBoardName = "Default Board"

// Board is a named grouping of tasks.
type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
