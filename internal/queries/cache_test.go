package queries_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksgo/backend"
	"tasksgo/internal/queries"
)

// countingLister serves a fixed task set and counts fetches per view.
type countingLister struct {
	mu    sync.Mutex
	calls map[backend.View]int
	tasks map[backend.View][]backend.Task
	err   error
}

func newCountingLister() *countingLister {
	return &countingLister{
		calls: make(map[backend.View]int),
		tasks: make(map[backend.View][]backend.Task),
	}
}

func (l *countingLister) ListTasks(ctx context.Context, view backend.View) ([]backend.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[view]++
	if l.err != nil {
		return nil, l.err
	}
	return l.tasks[view], nil
}

func (l *countingLister) callCount(view backend.View) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[view]
}

func TestGetCachesUntilInvalidated(t *testing.T) {
	lister := newCountingLister()
	lister.tasks[backend.ViewTodo] = []backend.Task{{ID: 1, Text: "a"}}
	cache := queries.New(lister)
	ctx := context.Background()

	tasks, err := cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.callCount(backend.ViewTodo), "second read must hit the cache")

	cache.Invalidate(backend.ViewTodo)
	_, err = cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.callCount(backend.ViewTodo), "invalidation must force a refetch")
}

func TestViewsAreCachedIndependently(t *testing.T) {
	lister := newCountingLister()
	cache := queries.New(lister)
	ctx := context.Background()

	_, err := cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	_, err = cache.Get(ctx, backend.ViewDone)
	require.NoError(t, err)

	cache.Invalidate(backend.ViewDone)
	_, err = cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	_, err = cache.Get(ctx, backend.ViewDone)
	require.NoError(t, err)

	assert.Equal(t, 1, lister.callCount(backend.ViewTodo))
	assert.Equal(t, 2, lister.callCount(backend.ViewDone))
}

func TestErrorsAreNotCached(t *testing.T) {
	lister := newCountingLister()
	lister.err = errors.New("boom")
	cache := queries.New(lister)
	ctx := context.Background()

	_, err := cache.Get(ctx, backend.ViewTodo)
	require.Error(t, err)

	lister.mu.Lock()
	lister.err = nil
	lister.mu.Unlock()

	_, err = cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.callCount(backend.ViewTodo))
}

// blockingLister parks every fetch until released.
type blockingLister struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
	tasks   []backend.Task
}

func (l *blockingLister) ListTasks(ctx context.Context, view backend.View) ([]backend.Task, error) {
	l.calls.Add(1)
	l.started <- struct{}{}
	<-l.release
	return l.tasks, nil
}

func TestConcurrentGetsShareOneFetch(t *testing.T) {
	lister := &blockingLister{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
		tasks:   []backend.Task{{ID: 1, Text: "a"}},
	}
	cache := queries.New(lister)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([][]backend.Task, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = cache.Get(ctx, backend.ViewTodo)
	}()
	<-lister.started // first fetch is registered as pending

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = cache.Get(ctx, backend.ViewTodo)
	}()

	// Give the second reader time to attach to the pending fetch,
	// then let the fetch finish.
	time.Sleep(20 * time.Millisecond)
	close(lister.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, int32(1), lister.calls.Load(), "concurrent reads must share one request")
}

func TestInvalidationDuringFetchForcesRefetch(t *testing.T) {
	lister := &blockingLister{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		tasks:   []backend.Task{{ID: 1, Text: "stale"}},
	}
	cache := queries.New(lister)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cache.Get(ctx, backend.ViewTodo)
	}()
	<-lister.started

	// A mutation confirms while the fetch is still in flight; its
	// result may predate the write and must not stick.
	cache.Invalidate(backend.ViewTodo)
	close(lister.release)
	<-done

	_, err := cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load(), "result fetched before the invalidation must not be served as current")
}

func TestPendingWaiterHonorsContext(t *testing.T) {
	lister := &blockingLister{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	cache := queries.New(lister)

	go func() {
		_, _ = cache.Get(context.Background(), backend.ViewTodo)
	}()
	<-lister.started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cache.Get(ctx, backend.ViewTodo)
	assert.ErrorIs(t, err, context.Canceled)

	close(lister.release)
}

func TestGetReturnsACopy(t *testing.T) {
	lister := newCountingLister()
	lister.tasks[backend.ViewTodo] = []backend.Task{{ID: 1, Text: "a"}}
	cache := queries.New(lister)
	ctx := context.Background()

	first, err := cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	first[0].Text = "mutated"

	second, err := cache.Get(ctx, backend.ViewTodo)
	require.NoError(t, err)
	assert.Equal(t, "a", second[0].Text, "callers must not be able to mutate the cached copy")
}
