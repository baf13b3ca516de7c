package storage

import (
	"encoding/json"
	"reflect"
	"testing"

	"kanban-board/domain"
)

func TestTaskEntityRoundTrip(t *testing.T) {
	task := domain.Task{
		ID:          "t1",
		Title:       "Write report",
		Description: "quarterly numbers",
		Due:         "2026-12-31T14:30:00",
		Tags:        []domain.Tag{{Text: "Work", Type: domain.TagWork}},
		Subtasks:    []domain.Subtask{{Text: "draft", Completed: true}, {Text: "review"}},
		Status:      domain.StatusInProgress,
		Board:       domain.DefaultBoardID,
		Created:     "2026-06-01T09:00:00Z",
	}

	payload, err := encodeTaskEntity("user-1", task)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if raw["PartitionKey"] != "user-1" || raw["RowKey"] != "t1" {
		t.Fatalf("unexpected keys: %v", raw)
	}

	got, err := decodeTaskEntity(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, task)
	}
}

func TestEncodeTaskEntityNormalizesOptionals(t *testing.T) {
	task := domain.Task{ID: "t1", Title: "bare", Status: domain.StatusTodo, Board: domain.DefaultBoardID}

	payload, err := encodeTaskEntity("u", task)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	// Every field is present, optionals as their empty equivalents.
	for _, field := range []string{"Title", "Description", "Due", "Tags", "Subtasks", "Status", "Board", "Created"} {
		if _, ok := raw[field]; !ok {
			t.Fatalf("missing field %s in %v", field, raw)
		}
	}
	if raw["Tags"] != "[]" || raw["Subtasks"] != "[]" {
		t.Fatalf("expected empty collections, got Tags=%v Subtasks=%v", raw["Tags"], raw["Subtasks"])
	}
	if raw["Description"] != "" || raw["Due"] != "" {
		t.Fatalf("expected empty optional strings, got %v", raw)
	}
}

func TestDecodeTaskEntityToleratesMissingCollections(t *testing.T) {
	payload := []byte(`{"PartitionKey":"u","RowKey":"t1","Title":"x","Status":"todo","Board":"default"}`)
	got, err := decodeTaskEntity(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tags == nil || got.Subtasks == nil {
		t.Fatal("decoded task should have empty, non-nil collections")
	}
}

func TestSortTasksByCreatedDesc(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a", Created: "2026-01-01T00:00:00Z"},
		{ID: "b", Created: "2026-03-01T00:00:00Z"},
		{ID: "c", Created: "2026-02-01T00:00:00Z"},
	}
	sortTasksByCreatedDesc(tasks)
	if tasks[0].ID != "b" || tasks[1].ID != "c" || tasks[2].ID != "a" {
		t.Fatalf("unexpected order: %v", tasks)
	}
}
