package render

import (
	"testing"
	"time"
)

func TestDueClass(t *testing.T) {
	today := time.Date(2026, 6, 15, 13, 45, 0, 0, time.UTC)
	cases := []struct {
		due  string
		want string
	}{
		{"2026-06-14", DueOverdue},
		{"2026-06-15", DueSoon},
		{"2026-06-16", DueSoon},
		{"2026-06-17", DueSoon},
		{"2026-06-18", DueNone},
		{"", DueNone},
		{"not-a-date", DueNone},
	}
	for _, tc := range cases {
		if got := DueClass(tc.due, today); got != tc.want {
			t.Fatalf("DueClass(%q) = %q, want %q", tc.due, got, tc.want)
		}
	}
}

func TestDueClassIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, 6, 15, 23, 59, 0, 0, time.UTC)
	if got := DueClass("2026-06-14T23:59:00", today); got != DueOverdue {
		t.Fatalf("expected overdue, got %q", got)
	}
	if got := DueClass("2026-06-17T00:01:00", today); got != DueSoon {
		t.Fatalf("expected soon, got %q", got)
	}
}

func TestFormatDue(t *testing.T) {
	cases := []struct {
		due  string
		want string
	}{
		{"2026-12-31T14:30:00", "12/31 14:30"},
		{"2026-12-31", "12/31"},
		{"2026-01-05", "1/5"},
		{"", ""},
		{"garbage", ""},
	}
	for _, tc := range cases {
		if got := FormatDue(tc.due); got != tc.want {
			t.Fatalf("FormatDue(%q) = %q, want %q", tc.due, got, tc.want)
		}
	}
}
