package tui

import (
	"fmt"
	"strings"
	"time"

	"tasksgo/backend"
	"tasksgo/internal/views"
)

// ParseEntry turns an add/edit input line into a draft. Words starting
// with '#' become tags and a word of the form '@2006-01-02' sets the
// due date; everything else is the task text.
//
//	buy milk #shopping #errand @2026-09-15
func ParseEntry(line string) (backend.Draft, error) {
	var draft backend.Draft
	var text []string

	for _, word := range strings.Fields(line) {
		switch {
		case strings.HasPrefix(word, "#"):
			tag := strings.TrimPrefix(word, "#")
			if tag == "" {
				return draft, &backend.ValidationError{Field: "tags", Message: "tag should not be empty"}
			}
			draft.Tags = append(draft.Tags, tag)
		case strings.HasPrefix(word, "@"):
			due, err := time.Parse(views.DateFormat, strings.TrimPrefix(word, "@"))
			if err != nil {
				return draft, &backend.ValidationError{Field: "due", Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", strings.TrimPrefix(word, "@"))}
			}
			draft.Due = &due
		default:
			text = append(text, word)
		}
	}

	draft.Text = strings.Join(text, " ")
	if err := backend.ValidateDraft(draft); err != nil {
		return draft, err
	}
	return draft, nil
}

// FormatEntry renders a task back into the input line syntax, for
// prefilling the edit prompt.
func FormatEntry(t backend.Task) string {
	parts := []string{t.Text}
	for _, tag := range t.Tags {
		parts = append(parts, "#"+tag)
	}
	if t.HasDue() {
		parts = append(parts, "@"+t.Due.Format(views.DateFormat))
	}
	return strings.Join(parts, " ")
}
