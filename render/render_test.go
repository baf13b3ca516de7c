package render

import (
	"strings"
	"testing"
	"time"

	"kanban-board/domain"
)

var renderToday = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func TestColumnsPartitionsByBoardAndStatus(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo, Board: "default"},
		{ID: "2", Title: "b", Status: domain.StatusDone, Board: "default"},
		{ID: "3", Title: "c", Status: domain.StatusTodo, Board: "other"},
		{ID: "4", Title: "d", Status: domain.StatusArchive, Board: "default"},
	}

	cols := Columns(tasks, "default", renderToday)
	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}
	counts := map[domain.Status]int{}
	for _, col := range cols {
		counts[col.Status] = col.Count
		if col.ContainerID != string(col.Status)+"-list" {
			t.Fatalf("unexpected container id: %s", col.ContainerID)
		}
		if col.Count != len(col.Tasks) {
			t.Fatalf("count mismatch in %s", col.Status)
		}
	}
	if counts[domain.StatusTodo] != 1 || counts[domain.StatusDone] != 1 || counts[domain.StatusArchive] != 1 || counts[domain.StatusInProgress] != 0 {
		t.Fatalf("unexpected partition: %v", counts)
	}
}

func TestColumnsQuickActions(t *testing.T) {
	tasks := []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo, Board: "b"},
		{ID: "2", Title: "b", Status: domain.StatusInProgress, Board: "b"},
		{ID: "3", Title: "c", Status: domain.StatusDone, Board: "b"},
		{ID: "4", Title: "d", Status: domain.StatusArchive, Board: "b"},
	}
	cols := Columns(tasks, "b", renderToday)
	want := map[domain.Status]domain.Status{
		domain.StatusTodo:       domain.StatusInProgress,
		domain.StatusInProgress: domain.StatusDone,
		domain.StatusDone:       domain.StatusTodo,
		domain.StatusArchive:    "",
	}
	for _, col := range cols {
		if len(col.Tasks) != 1 {
			t.Fatalf("expected one task in %s", col.Status)
		}
		if got := col.Tasks[0].QuickAction; got != want[col.Status] {
			t.Fatalf("quick action for %s = %q, want %q", col.Status, got, want[col.Status])
		}
	}
}

func TestFragmentEscapesUserContent(t *testing.T) {
	tasks := []domain.Task{{
		ID:          "t1",
		Title:       `<img src=x onerror=alert(1)>`,
		Description: `"quoted"`,
		Status:      domain.StatusTodo,
		Board:       "default",
		Tags:        []domain.Tag{{Text: "<b>", Type: "work"}},
		Subtasks:    []domain.Subtask{{Text: "a & b"}},
	}}
	cols := Columns(tasks, "default", renderToday)
	frag := cols[0].Fragment()
	for _, raw := range []string{"<img", "onerror", `"quoted"`, "<b>"} {
		if strings.Contains(frag, raw) {
			t.Fatalf("fragment leaked raw content %q: %s", raw, frag)
		}
	}
	if !strings.Contains(frag, "&lt;img") {
		t.Fatalf("expected escaped title, got %s", frag)
	}
	if !strings.Contains(frag, "a &amp; b") {
		t.Fatalf("expected escaped subtask text, got %s", frag)
	}
}

func TestFragmentsEndToEndCreate(t *testing.T) {
	// A fresh task with no optionals renders only a title card in todo.
	tasks := []domain.Task{{
		ID: "t1", Title: "Buy milk", Status: domain.StatusTodo, Board: domain.DefaultBoardID,
		Tags: []domain.Tag{}, Subtasks: []domain.Subtask{},
	}}
	cols := Columns(tasks, domain.DefaultBoardID, renderToday)
	if cols[0].Count != 1 {
		t.Fatalf("todo count = %d, want 1", cols[0].Count)
	}
	frags := Fragments(cols)
	frag := frags["todo-list"]
	if !strings.Contains(frag, "Buy milk") {
		t.Fatalf("expected task in todo fragment: %s", frag)
	}
	for _, absent := range []string{"task-due", "task-tags", "task-subtasks"} {
		if strings.Contains(frag, absent) {
			t.Fatalf("fragment should not contain %s: %s", absent, frag)
		}
	}
	for _, id := range []string{"inprogress-list", "done-list", "archive-list"} {
		if frags[id] != "" {
			t.Fatalf("expected empty fragment for %s", id)
		}
	}
}

func TestFragmentDueBadge(t *testing.T) {
	tasks := []domain.Task{{
		ID: "t1", Title: "Report", Due: "2026-12-31T14:30:00",
		Status: domain.StatusTodo, Board: domain.DefaultBoardID,
	}}
	cols := Columns(tasks, domain.DefaultBoardID, renderToday)
	if got := cols[0].Tasks[0].DueLabel; got != "12/31 14:30" {
		t.Fatalf("due label = %q", got)
	}
	frag := cols[0].Fragment()
	if !strings.Contains(frag, "12/31 14:30") {
		t.Fatalf("expected due label in fragment: %s", frag)
	}
	if !strings.Contains(frag, `class="task-due"`) {
		t.Fatalf("expected unclassified due badge: %s", frag)
	}
}
