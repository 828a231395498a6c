package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksgo/backend"
	"tasksgo/backend/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndList(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateTask(ctx, backend.Draft{Text: "Buy milk", Tags: []string{"shopping"}, Due: &due}))
	require.NoError(t, store.CreateTask(ctx, backend.Draft{Text: "Old chore", Done: true}))

	all, err := store.ListTasks(ctx, backend.ViewAll)
	require.NoError(t, err)
	require.Len(t, all, 2)

	todo, err := store.ListTasks(ctx, backend.ViewTodo)
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, "Buy milk", todo[0].Text)
	assert.Equal(t, []string{"shopping"}, todo[0].Tags)
	assert.True(t, todo[0].Due.Equal(due))

	done, err := store.ListTasks(ctx, backend.ViewDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Old chore", done[0].Text)
	assert.Empty(t, done[0].Tags)
	assert.False(t, done[0].HasDue(), "missing due date must round-trip as the sentinel")
}

func TestUpdate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTask(ctx, backend.Draft{Text: "Buy milk", Tags: []string{"shopping"}}))
	tasks, err := store.ListTasks(ctx, backend.ViewAll)
	require.NoError(t, err)
	id := tasks[0].ID

	require.NoError(t, store.UpdateTask(ctx, id, backend.Draft{
		Text: "Buy milk and eggs",
		Tags: []string{"shopping", "errand"},
	}))

	tasks, err = store.ListTasks(ctx, backend.ViewAll)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID, "id is never reassigned on update")
	assert.Equal(t, "Buy milk and eggs", tasks[0].Text)
	assert.Equal(t, []string{"shopping", "errand"}, tasks[0].Tags)

	err = store.UpdateTask(ctx, 999, backend.Draft{Text: "x"})
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateTask(ctx, backend.Draft{Text: "temp"}))
	tasks, err := store.ListTasks(ctx, backend.ViewAll)
	require.NoError(t, err)
	id := tasks[0].ID

	require.NoError(t, store.DeleteTask(ctx, id))

	tasks, err = store.ListTasks(ctx, backend.ViewAll)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	err = store.DeleteTask(ctx, id)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestValidationBeforeWrite(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	var verr *backend.ValidationError
	require.ErrorAs(t, store.CreateTask(ctx, backend.Draft{Text: ""}), &verr)
	require.ErrorAs(t, store.CreateTask(ctx, backend.Draft{Text: "x", Tags: []string{""}}), &verr)

	tasks, err := store.ListTasks(ctx, backend.ViewAll)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestListOrderedByDue(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	later := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateTask(ctx, backend.Draft{Text: "later", Due: &later}))
	require.NoError(t, store.CreateTask(ctx, backend.Draft{Text: "sooner", Due: &sooner}))

	tasks, err := store.ListTasks(ctx, backend.ViewAll)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "sooner", tasks[0].Text)
	assert.Equal(t, "later", tasks[1].Text)
}
