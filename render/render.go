package render

import (
	"time"

	"kanban-board/domain"
)

// ColumnView is the computed content of one status column for the active
// board. Consumers replace the matching container's content wholesale with the
// fragment built from it, so a view always reflects a complete snapshot.
type ColumnView struct {
	Status      domain.Status `json:"status"`
	Title       string        `json:"title"`
	ContainerID string        `json:"containerId"`
	Count       int           `json:"count"`
	Tasks       []TaskView    `json:"tasks"`
}

// TaskView is a single task prepared for display: due badge classification and
// label are precomputed, the quick action (if any) resolved.
type TaskView struct {
	Task        domain.Task   `json:"task"`
	DueClass    string        `json:"dueClass"`
	DueLabel    string        `json:"dueLabel"`
	QuickAction domain.Status `json:"quickAction,omitempty"`
}

var columnTitles = map[domain.Status]string{
	domain.StatusTodo:       "To Do",
	domain.StatusInProgress: "In Progress",
	domain.StatusDone:       "Done",
	domain.StatusArchive:    "Archive",
}

// ContainerID returns the deterministic per-status container name consumers
// key their task lists by.
func ContainerID(status domain.Status) string {
	return string(status) + "-list"
}

// Columns partitions tasks into the four fixed status columns for the given
// board. Only tasks whose status matches a column exactly are included.
func Columns(tasks []domain.Task, boardID string, today time.Time) []ColumnView {
	views := make([]ColumnView, 0, len(domain.Statuses))
	for _, status := range domain.Statuses {
		col := ColumnView{
			Status:      status,
			Title:       columnTitles[status],
			ContainerID: ContainerID(status),
			Tasks:       []TaskView{},
		}
		for _, task := range tasks {
			if task.Board != boardID || task.Status != status {
				continue
			}
			col.Tasks = append(col.Tasks, newTaskView(task, today))
		}
		col.Count = len(col.Tasks)
		views = append(views, col)
	}
	return views
}

func newTaskView(task domain.Task, today time.Time) TaskView {
	view := TaskView{
		Task:     task,
		DueClass: DueClass(task.Due, today),
		DueLabel: FormatDue(task.Due),
	}
	if next, ok := task.Status.QuickAction(); ok {
		view.QuickAction = next
	}
	return view
}
