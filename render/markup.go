package render

import (
	"fmt"
	"strings"
)

var quickActionLabels = map[string]string{
	"inprogress": "Start",
	"done":       "Done",
	"todo":       "Restart",
}

// Fragments serializes the given columns into markup keyed by container id.
// Writing each fragment into its container replaces the prior content
// entirely.
func Fragments(columns []ColumnView) map[string]string {
	out := make(map[string]string, len(columns))
	for _, col := range columns {
		out[col.ContainerID] = col.Fragment()
	}
	return out
}

// Fragment builds the full task-list markup for one column.
func (c ColumnView) Fragment() string {
	var b strings.Builder
	for _, task := range c.Tasks {
		task.writeCard(&b)
	}
	return b.String()
}

func (v TaskView) writeCard(b *strings.Builder) {
	task := v.Task
	fmt.Fprintf(b, `<div class="task" draggable="true" tabindex="0" data-id="%s" data-status="%s">`,
		EscapeAttr(task.ID), EscapeAttr(string(task.Status)))

	fmt.Fprintf(b, `<div class="task-title">%s</div>`, EscapeMarkup(task.Title))
	if task.Description != "" {
		fmt.Fprintf(b, `<div class="task-desc">%s</div>`, EscapeMarkup(task.Description))
	}

	b.WriteString(`<div class="task-meta">`)
	if task.Due != "" {
		class := "task-due"
		if v.DueClass != DueNone {
			class += " " + v.DueClass
		}
		fmt.Fprintf(b, `<span class="%s">%s</span>`, class, EscapeMarkup(v.DueLabel))
	}
	if len(task.Tags) > 0 {
		b.WriteString(`<div class="task-tags">`)
		for _, tag := range task.Tags {
			fmt.Fprintf(b, `<span class="tag tag-%s">%s</span>`, EscapeAttr(tag.Type), EscapeMarkup(tag.Text))
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)

	if len(task.Subtasks) > 0 {
		b.WriteString(`<div class="task-subtasks">`)
		for i, st := range task.Subtasks {
			class := "subtask"
			checked := ""
			if st.Completed {
				class += " completed"
				checked = " checked"
			}
			fmt.Fprintf(b, `<div class="%s"><input type="checkbox" data-subtask="%d"%s><span>%s</span></div>`,
				class, i, checked, EscapeMarkup(st.Text))
		}
		b.WriteString(`</div>`)
	}

	if v.QuickAction != "" {
		fmt.Fprintf(b, `<button class="task-btn quick-action" data-target="%s">%s</button>`,
			EscapeAttr(string(v.QuickAction)), quickActionLabels[string(v.QuickAction)])
	}

	b.WriteString(`</div>`)
}
