// Package queries provides the per-view task cache that sits between
// the UI and the task repository.
//
// Each view (all/todo/done) holds the last-fetched task collection and
// a generation token. Mutations bump the token; the next read refetches.
// At most one fetch per view is in flight: concurrent reads share the
// pending result instead of issuing duplicate requests.
package queries

import (
	"context"
	"slices"
	"sync"

	"tasksgo/backend"
)

// Lister is the read side of the task repository.
type Lister interface {
	ListTasks(ctx context.Context, view backend.View) ([]backend.Task, error)
}

// Cache caches task collections per view. Create one per session and
// drop it on logout.
type Cache struct {
	lister Lister

	mu      sync.Mutex
	entries map[backend.View]*entry
}

type entry struct {
	generation uint64 // bumped on every invalidation
	fetchedGen uint64 // generation the cached tasks belong to
	loaded     bool
	tasks      []backend.Task
	pending    *fetch
}

// fetch is a single in-flight list request shared by all readers of a
// view.
type fetch struct {
	done       chan struct{}
	generation uint64
	tasks      []backend.Task
	err        error
}

// New creates a cache reading through the given lister.
func New(lister Lister) *Cache {
	return &Cache{
		lister:  lister,
		entries: make(map[backend.View]*entry),
	}
}

func (c *Cache) entry(view backend.View) *entry {
	e, ok := c.entries[view]
	if !ok {
		e = &entry{}
		c.entries[view] = e
	}
	return e
}

// Get returns the tasks for the given view, fetching them if the
// cached copy is missing or stale. A second Get while a fetch is
// pending waits for that fetch rather than issuing another request.
func (c *Cache) Get(ctx context.Context, view backend.View) ([]backend.Task, error) {
	c.mu.Lock()
	e := c.entry(view)

	if e.loaded && e.fetchedGen == e.generation {
		tasks := slices.Clone(e.tasks)
		c.mu.Unlock()
		return tasks, nil
	}

	if f := e.pending; f != nil {
		c.mu.Unlock()
		return waitFetch(ctx, f)
	}

	f := &fetch{
		done:       make(chan struct{}),
		generation: e.generation,
	}
	e.pending = f
	c.mu.Unlock()

	tasks, err := c.lister.ListTasks(ctx, view)

	c.mu.Lock()
	f.tasks, f.err = tasks, err
	close(f.done)
	if e.pending == f {
		e.pending = nil
	}
	// Store only if no invalidation raced the fetch; otherwise the
	// result may predate a confirmed mutation and the next Get must
	// refetch.
	if err == nil && f.generation == e.generation {
		e.tasks = tasks
		e.loaded = true
		e.fetchedGen = e.generation
	}
	c.mu.Unlock()

	return slices.Clone(tasks), err
}

// waitFetch blocks until the shared fetch resolves or the caller's
// context is done.
func waitFetch(ctx context.Context, f *fetch) ([]backend.Task, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		return slices.Clone(f.tasks), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate bumps the generation token of the given views, forcing
// the next Get to refetch.
func (c *Cache) Invalidate(views ...backend.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, view := range views {
		c.entry(view).generation++
	}
}

// InvalidateAll invalidates every view.
func (c *Cache) InvalidateAll() {
	c.Invalidate(backend.ViewAll, backend.ViewTodo, backend.ViewDone)
}
