// Package backend defines the task model and the repository contract
// shared by the remote HTTP client and the local store.
package backend

import (
	"context"
	"time"
)

// NoDueYear is the year component of the wire sentinel for "no due
// date". The server encodes an absent due date as the zero time, whose
// year is 1.
const NoDueYear = 1

// Task represents a single todo item as the server stores it.
type Task struct {
	ID   int       `json:"id"`
	Text string    `json:"text"`
	Tags []string  `json:"tags"`
	Due  time.Time `json:"due"`
	Done bool      `json:"done"`
}

// HasDue reports whether the task carries a real due date rather than
// the wire sentinel.
func (t Task) HasDue() bool {
	return HasDue(t.Due)
}

// HasDue reports whether due is a real date. A year-1 value is the
// wire encoding of "no due date" and must never be shown to the user.
func HasDue(due time.Time) bool {
	return due.Year() != NoDueYear
}

// Draft is the payload for creating or replacing a task. A nil Due
// means "no due date"; the sentinel is only ever produced when parsing
// server responses, never sent by the client.
type Draft struct {
	Text string     `json:"text"`
	Tags []string   `json:"tags"`
	Due  *time.Time `json:"due,omitempty"`
	Done bool       `json:"done"`
}

// DraftOf converts a stored task back into a draft, normalizing the
// due-date sentinel to nil. Used for edits and done-toggles, which are
// full-record replacements on the wire.
func DraftOf(t Task) Draft {
	d := Draft{
		Text: t.Text,
		Tags: t.Tags,
		Done: t.Done,
	}
	if t.HasDue() {
		due := t.Due
		d.Due = &due
	}
	return d
}

// View selects which server collection a read targets.
type View string

const (
	ViewAll  View = "all"
	ViewTodo View = "todo"
	ViewDone View = "done"
)

// Valid reports whether v is one of the known views.
func (v View) Valid() bool {
	switch v {
	case ViewAll, ViewTodo, ViewDone:
		return true
	}
	return false
}

// Repository is the storage contract for task operations. The remote
// HTTP client and the local SQLite store both implement it.
type Repository interface {
	// ListTasks returns the tasks in the given view.
	ListTasks(ctx context.Context, view View) ([]Task, error)

	// CreateTask stores a new task. The server assigns the id; the
	// caller is responsible for refreshing any cached view.
	CreateTask(ctx context.Context, draft Draft) error

	// UpdateTask replaces the full record of the task with the given
	// id. Done-toggles go through here as well.
	UpdateTask(ctx context.Context, id int, draft Draft) error

	// DeleteTask removes the task with the given id.
	DeleteTask(ctx context.Context, id int) error

	// Close releases any connections held by the repository.
	Close() error
}
