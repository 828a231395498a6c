// Package views derives presentation rows from raw task collections.
// Everything here is a pure computation; filtering and sorting are
// client-side predicates and never reach the server.
package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tasksgo/backend"
)

// DateFormat is the date format used for due dates throughout the
// client.
const DateFormat = "2006-01-02"

// SortDirection orders rows by due date.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Projection holds the ephemeral filter and sort state of a view.
type Projection struct {
	Tag  string        // exact tag to match; empty matches every task
	Sort SortDirection // due-date sort direction, default ascending
}

// Row is one presentation row. Due is nil when the task carries the
// "no due date" wire sentinel.
type Row struct {
	ID   int
	Text string
	Tags []string
	Due  *time.Time
	Done bool
}

// TagsLabel returns the row's tags joined for display.
func (r Row) TagsLabel() string {
	return strings.Join(r.Tags, ", ")
}

// DueLabel returns the human-readable due-date description relative to
// today, or "" for rows without a due date.
func (r Row) DueLabel(today time.Time) string {
	if r.Due == nil {
		return ""
	}
	return DescribeDueDate(*r.Due, today)
}

// Project applies the tag filter and due-date sort to a task
// collection. Tasks without a due date always sort after dated tasks,
// in both directions. The input is not modified.
func Project(tasks []backend.Task, p Projection) []Row {
	rows := make([]Row, 0, len(tasks))
	for _, t := range tasks {
		if p.Tag != "" && !slices.Contains(t.Tags, p.Tag) {
			continue
		}
		row := Row{
			ID:   t.ID,
			Text: t.Text,
			Tags: t.Tags,
			Done: t.Done,
		}
		if t.HasDue() {
			due := t.Due
			row.Due = &due
		}
		rows = append(rows, row)
	}

	desc := p.Sort == SortDesc
	slices.SortStableFunc(rows, func(a, b Row) int {
		return compareDue(a, b, desc)
	})
	return rows
}

// compareDue orders two rows by due date. Rows without a due date are
// last regardless of direction; ties keep their input order.
func compareDue(a, b Row, desc bool) int {
	switch {
	case a.Due == nil && b.Due == nil:
		return 0
	case a.Due == nil:
		return 1
	case b.Due == nil:
		return -1
	}

	cmp := a.Due.Compare(*b.Due)
	if desc {
		return -cmp
	}
	return cmp
}

// DescribeDueDate renders a due date relative to today: a bare date
// for past dates, then "(today)", "(1 day remaining)" or "(N days
// remaining)". The difference is counted in calendar days, so the
// time-of-day and zone of either value cannot shift the bucket.
// The "no due date" sentinel renders as the empty string.
func DescribeDueDate(due, today time.Time) string {
	if !backend.HasDue(due) {
		return ""
	}

	date := due.Format(DateFormat)
	switch days := civilDay(due) - civilDay(today); {
	case days < 0:
		return date
	case days == 0:
		return date + " (today)"
	case days == 1:
		return date + " (1 day remaining)"
	default:
		return fmt.Sprintf("%s (%d days remaining)", date, days)
	}
}

// civilDay maps a time to its calendar day number, ignoring
// time-of-day and zone offset.
func civilDay(t time.Time) int {
	year, month, day := t.Date()
	return int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
