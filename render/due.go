package render

import (
	"fmt"
	"strings"
	"time"
)

// Urgency classes derived from a task's due value. Styling only, never stored.
const (
	DueOverdue = "overdue"
	DueSoon    = "soon"
	DueNone    = ""
)

// DueClass classifies a due value against today. Only the calendar date is
// compared; a time-of-day component never changes the classification.
func DueClass(due string, today time.Time) string {
	date, ok := dueDate(due)
	if !ok {
		return DueNone
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(date.Sub(day).Hours() / 24)
	if diff < 0 {
		return DueOverdue
	}
	if diff <= 2 {
		return DueSoon
	}
	return DueNone
}

// FormatDue renders a due value as "M/D" or "M/D HH:MM" when a time component
// is present.
func FormatDue(due string) string {
	date, ok := dueDate(due)
	if !ok {
		return ""
	}
	label := fmt.Sprintf("%d/%d", int(date.Month()), date.Day())
	if idx := strings.IndexByte(due, 'T'); idx >= 0 && len(due) >= idx+6 {
		label += " " + due[idx+1:idx+6]
	}
	return label
}

func dueDate(due string) (time.Time, bool) {
	if due == "" {
		return time.Time{}, false
	}
	datePart := due
	if idx := strings.IndexByte(due, 'T'); idx >= 0 {
		datePart = due[:idx]
	}
	date, err := time.ParseInLocation("2006-01-02", datePart, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
