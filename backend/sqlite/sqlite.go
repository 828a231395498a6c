// Package sqlite implements backend.Repository on a local SQLite
// database, for working without a task server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tasksgo/backend"
)

// Store implements backend.Repository using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store and initializes the schema. Use
// ":memory:" for an ephemeral database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates the task table if it does not exist. The layout
// mirrors the server's: tags as a comma-separated string, due as a
// unix timestamp (the zero time encodes "no due date").
func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS task (
			id   INTEGER PRIMARY KEY,
			text TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '',
			due  INTEGER NOT NULL,
			done INTEGER NOT NULL DEFAULT 0
		);`)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListTasks returns the tasks in the given view, ordered by due date.
func (s *Store) ListTasks(ctx context.Context, view backend.View) ([]backend.Task, error) {
	query := "SELECT id, text, tags, due, done FROM task"
	var args []any
	switch view {
	case backend.ViewAll:
	case backend.ViewTodo:
		query += " WHERE done = ?"
		args = append(args, false)
	case backend.ViewDone:
		query += " WHERE done = ?"
		args = append(args, true)
	default:
		return nil, fmt.Errorf("unknown view: %s", view)
	}
	query += " ORDER BY due ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// CreateTask stores a new task and lets SQLite assign the id.
func (s *Store) CreateTask(ctx context.Context, draft backend.Draft) error {
	if err := backend.ValidateDraft(draft); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task (text, tags, due, done) VALUES (?, ?, ?, ?)`,
		draft.Text, strings.Join(draft.Tags, ","), dueUnix(draft.Due), draft.Done)
	return err
}

// UpdateTask replaces the full record of the task with the given id.
func (s *Store) UpdateTask(ctx context.Context, id int, draft backend.Draft) error {
	if err := backend.ValidateDraft(draft); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE task SET text = ?, tags = ?, due = ?, done = ? WHERE id = ?`,
		draft.Text, strings.Join(draft.Tags, ","), dueUnix(draft.Due), draft.Done, id)
	if err != nil {
		return err
	}
	return checkAffected(res, id)
}

// DeleteTask removes the task with the given id.
func (s *Store) DeleteTask(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM task WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, id)
}

// checkAffected maps a zero-row mutation to backend.ErrNotFound.
func checkAffected(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", backend.ErrNotFound, id)
	}
	return nil
}

// dueUnix encodes an optional due date the way the server does: the
// zero time stands in for "no due date".
func dueUnix(due *time.Time) int64 {
	if due == nil {
		return time.Time{}.Unix()
	}
	return due.Unix()
}

// scanTasks reads task rows, splitting the tag string and restoring
// the due timestamp.
func scanTasks(rows *sql.Rows) ([]backend.Task, error) {
	tasks := make([]backend.Task, 0)
	for rows.Next() {
		var t backend.Task
		var tags string
		var due int64

		if err := rows.Scan(&t.ID, &t.Text, &tags, &due, &t.Done); err != nil {
			return nil, err
		}

		if tags == "" {
			t.Tags = make([]string, 0)
		} else {
			t.Tags = strings.Split(tags, ",")
		}
		t.Due = time.Unix(due, 0).UTC()

		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

var _ backend.Repository = (*Store)(nil)
