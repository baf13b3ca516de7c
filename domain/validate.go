package domain

import (
	"fmt"
	"strings"
)

// Field limits enforced before any persistence call.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxTags              = 5
	MaxTagLength         = 20
	MaxSubtasks          = 10
	MaxSubtaskLength     = 200
	MaxBoardNameLength   = 50
)

// ValidationError reports a rejected field along with a user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateTitle trims the title and rejects empty or over-limit values.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", validationErrorf("title", "task title must not be empty")
	}
	if len([]rune(trimmed)) > MaxTitleLength {
		return "", validationErrorf("title", "task title must not exceed %d characters", MaxTitleLength)
	}
	return trimmed, nil
}

// ValidateDescription returns the trimmed description, or an empty string when
// absent. Only the length ceiling is a hard failure.
func ValidateDescription(description string) (string, error) {
	if description == "" {
		return "", nil
	}
	if len([]rune(description)) > MaxDescriptionLength {
		return "", validationErrorf("description", "description must not exceed %d characters", MaxDescriptionLength)
	}
	return strings.TrimSpace(description), nil
}

// ValidateTags normalizes a tag list. The count ceiling fails loudly; entries
// whose text trims to empty are dropped silently, and unknown tag types coerce
// to "other".
func ValidateTags(tags []Tag) ([]Tag, error) {
	if len(tags) > MaxTags {
		return nil, validationErrorf("tags", "tag count must not exceed %d", MaxTags)
	}
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		text := strings.TrimSpace(tag.Text)
		if text == "" {
			continue
		}
		if len([]rune(text)) > MaxTagLength {
			return nil, validationErrorf("tag", "tag must not exceed %d characters", MaxTagLength)
		}
		out = append(out, Tag{Text: text, Type: coerceTagType(tag.Type)})
	}
	return out, nil
}

func coerceTagType(t string) string {
	for _, known := range TagTypes {
		if t == known {
			return t
		}
	}
	return TagOther
}

// ValidateSubtasks normalizes a subtask list with the same strict/permissive
// split as ValidateTags: the count ceiling is a hard failure, blank entries
// drop silently.
func ValidateSubtasks(subtasks []Subtask) ([]Subtask, error) {
	if len(subtasks) > MaxSubtasks {
		return nil, validationErrorf("subtasks", "subtask count must not exceed %d", MaxSubtasks)
	}
	out := make([]Subtask, 0, len(subtasks))
	for _, st := range subtasks {
		text := strings.TrimSpace(st.Text)
		if text == "" {
			continue
		}
		if len([]rune(text)) > MaxSubtaskLength {
			return nil, validationErrorf("subtask", "subtask must not exceed %d characters", MaxSubtaskLength)
		}
		out = append(out, Subtask{Text: text, Completed: st.Completed})
	}
	return out, nil
}

// ValidateBoardName trims the name and rejects empty or over-limit values.
func ValidateBoardName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", validationErrorf("boardName", "board name must not be empty")
	}
	if len([]rune(trimmed)) > MaxBoardNameLength {
		return "", validationErrorf("boardName", "board name must not exceed %d characters", MaxBoardNameLength)
	}
	return trimmed, nil
}
