// Package mutation sequences task mutations: apply through the
// repository, invalidate the affected cached views, notify the user.
//
// There is no optimistic update. A mutation leaves the cached task
// collections untouched until the server confirms it, so a failed
// mutation keeps the last known good state and a successful one is
// followed by a refetch on the next read. Cache invalidation always
// happens after the repository call returns, never before.
package mutation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tasksgo/backend"
	"tasksgo/internal/notification"
)

// Op identifies a mutation kind.
type Op string

const (
	OpCreate     Op = "create"
	OpEdit       Op = "edit"
	OpToggleDone Op = "toggle-done"
	OpDelete     Op = "delete"
)

// State is the lifecycle of a single mutation. A mutation is Pending
// for the duration of Perform and ends Succeeded or Failed.
type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Action describes one mutation to perform.
type Action struct {
	Op    Op
	ID    int           // target for edit/toggle/delete
	Draft backend.Draft // payload for create/edit
	Task  backend.Task  // current record for toggle-done
}

// Create returns an action that creates a new task from the draft.
func Create(draft backend.Draft) Action {
	return Action{Op: OpCreate, Draft: draft}
}

// Edit returns an action that replaces the task's text, tags and due
// date.
func Edit(id int, draft backend.Draft) Action {
	return Action{Op: OpEdit, ID: id, Draft: draft}
}

// ToggleDone returns an action that flips the task's done flag. The
// wire models this as a full-record update.
func ToggleDone(task backend.Task) Action {
	return Action{Op: OpToggleDone, ID: task.ID, Task: task}
}

// Delete returns an action that removes the task.
func Delete(id int) Action {
	return Action{Op: OpDelete, ID: id}
}

// Outcome reports how a mutation ended.
type Outcome struct {
	MutationID string
	Op         Op
	State      State
	Err        error
}

// Succeeded reports whether the mutation was confirmed by the server.
func (o Outcome) Succeeded() bool {
	return o.State == StateSucceeded
}

// Mutator is the write side of the task repository.
type Mutator interface {
	CreateTask(ctx context.Context, draft backend.Draft) error
	UpdateTask(ctx context.Context, id int, draft backend.Draft) error
	DeleteTask(ctx context.Context, id int) error
}

// Invalidator marks cached views stale.
type Invalidator interface {
	Invalidate(views ...backend.View)
}

// Coordinator applies mutations and keeps the query cache and the user
// informed. Mutations on different tasks may run concurrently; the
// caller serializes mutations on the same task id (one open dialog per
// task).
type Coordinator struct {
	repo     Mutator
	cache    Invalidator
	notifier notification.Manager
}

// New creates a coordinator.
func New(repo Mutator, cache Invalidator, notifier notification.Manager) *Coordinator {
	return &Coordinator{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
	}
}

// Perform runs a single mutation to completion. On success the
// affected views are invalidated and a success notification is sent;
// on failure only a failure notification is sent and every cached view
// keeps its pre-mutation value.
func (c *Coordinator) Perform(ctx context.Context, a Action) Outcome {
	out := Outcome{
		MutationID: uuid.New().String(),
		Op:         a.Op,
		State:      StatePending,
	}

	err := c.apply(ctx, a)
	if err != nil {
		out.State = StateFailed
		out.Err = err
		c.notify(notification.NotifyError, failureMessage(a), out.MutationID)
		return out
	}

	out.State = StateSucceeded
	c.cache.Invalidate(affectedViews(a)...)
	c.notify(notification.NotifySuccess, successMessage(a), out.MutationID)
	return out
}

func (c *Coordinator) apply(ctx context.Context, a Action) error {
	switch a.Op {
	case OpCreate:
		return c.repo.CreateTask(ctx, a.Draft)
	case OpEdit:
		return c.repo.UpdateTask(ctx, a.ID, a.Draft)
	case OpToggleDone:
		draft := backend.DraftOf(a.Task)
		draft.Done = !a.Task.Done
		return c.repo.UpdateTask(ctx, a.ID, draft)
	case OpDelete:
		return c.repo.DeleteTask(ctx, a.ID)
	}
	return &backend.ValidationError{Field: "op", Message: "unknown mutation"}
}

func (c *Coordinator) notify(typ notification.Type, message, mutationID string) {
	if c.notifier == nil {
		return
	}
	_ = c.notifier.Send(notification.Notification{
		Type:       typ,
		Message:    message,
		MutationID: mutationID,
		Timestamp:  time.Now(),
	})
}

// affectedViews lists every view whose membership the mutation could
// change. Creating, deleting and toggling move tasks between todo and
// done; an edit only reshapes the task inside its current view. The
// all view is refreshed on every mutation since it contains every
// task.
func affectedViews(a Action) []backend.View {
	switch a.Op {
	case OpEdit:
		current := backend.ViewTodo
		if a.Draft.Done {
			current = backend.ViewDone
		}
		return []backend.View{backend.ViewAll, current}
	default:
		return []backend.View{backend.ViewAll, backend.ViewTodo, backend.ViewDone}
	}
}

func successMessage(a Action) string {
	switch a.Op {
	case OpCreate:
		return "Task created ✅"
	case OpEdit:
		return "Task updated ✅"
	case OpToggleDone:
		if a.Task.Done {
			return "Task undone ❌"
		}
		return "Task done ✅"
	case OpDelete:
		return "Task deleted ✅"
	}
	return ""
}

func failureMessage(a Action) string {
	switch a.Op {
	case OpCreate:
		return "Could not create task, please try again later."
	case OpDelete:
		return "Could not delete task, please try again later."
	default:
		return "Could not update task, please try again later."
	}
}
