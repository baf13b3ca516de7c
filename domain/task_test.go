package domain

import "testing"

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, ok := ParseStatus(string(s))
		if !ok || got != s {
			t.Fatalf("ParseStatus(%q) = %q, %v", s, got, ok)
		}
	}
	if _, ok := ParseStatus("shipped"); ok {
		t.Fatal("unknown status should not parse")
	}
}

func TestQuickAction(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusTodo, StatusInProgress, true},
		{StatusInProgress, StatusDone, true},
		{StatusDone, StatusTodo, true},
		{StatusArchive, "", false},
	}
	for _, tc := range cases {
		to, ok := tc.from.QuickAction()
		if ok != tc.ok || to != tc.to {
			t.Fatalf("QuickAction(%s) = %q, %v", tc.from, to, ok)
		}
	}
}

func TestNormalizeFillsCollections(t *testing.T) {
	task := Task{Title: "t"}
	task.Normalize()
	if task.Tags == nil || task.Subtasks == nil {
		t.Fatal("normalize should replace nil collections with empty ones")
	}
}

func TestCloneDoesNotAliasCollections(t *testing.T) {
	task := Task{
		Title:    "t",
		Tags:     []Tag{{Text: "a", Type: TagWork}},
		Subtasks: []Subtask{{Text: "s"}},
	}
	cp := task.Clone()
	cp.Tags[0].Text = "changed"
	cp.Subtasks[0].Completed = true
	if task.Tags[0].Text != "a" || task.Subtasks[0].Completed {
		t.Fatal("clone should not share backing arrays")
	}
}
