package tui_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"tasksgo/backend"
	"tasksgo/internal/mutation"
	"tasksgo/internal/notification"
	"tasksgo/internal/queries"
	"tasksgo/internal/tui"
	"tasksgo/internal/views"
)

// memRepo is an in-memory task repository for TUI tests.
type memRepo struct {
	mu     sync.Mutex
	nextID int
	tasks  []backend.Task
}

func newMemRepo(tasks ...backend.Task) *memRepo {
	repo := &memRepo{nextID: 1}
	for _, t := range tasks {
		t.ID = repo.nextID
		repo.nextID++
		repo.tasks = append(repo.tasks, t)
	}
	return repo
}

func (r *memRepo) ListTasks(_ context.Context, view backend.View) ([]backend.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []backend.Task
	for _, t := range r.tasks {
		switch view {
		case backend.ViewTodo:
			if t.Done {
				continue
			}
		case backend.ViewDone:
			if !t.Done {
				continue
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memRepo) CreateTask(_ context.Context, draft backend.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task := backend.Task{ID: r.nextID, Text: draft.Text, Tags: draft.Tags, Done: draft.Done}
	if draft.Due != nil {
		task.Due = *draft.Due
	}
	r.nextID++
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *memRepo) UpdateTask(_ context.Context, id int, draft backend.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i].Text = draft.Text
			r.tasks[i].Tags = draft.Tags
			r.tasks[i].Done = draft.Done
			if draft.Due != nil {
				r.tasks[i].Due = *draft.Due
			} else {
				r.tasks[i].Due = time.Time{}
			}
			return nil
		}
	}
	return backend.ErrNotFound
}

func (r *memRepo) DeleteTask(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return backend.ErrNotFound
}

func newTestModel(t *testing.T, repo *memRepo, view backend.View) *teatest.TestModel {
	t.Helper()

	notes := make(chan notification.Notification, 8)
	notifier, err := notification.NewManager(&notification.Config{Enabled: true},
		notification.WithCallback(func(n notification.Notification) {
			select {
			case notes <- n:
			default:
			}
		}))
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	t.Cleanup(func() { _ = notifier.Close() })

	cache := queries.New(repo)
	coord := mutation.New(repo, cache, notifier)
	model := tui.New(cache, coord, notes, view, views.Projection{})

	return teatest.NewTestModel(t, model, teatest.WithInitialTermSize(80, 24))
}

func sendKeyAndWait(tm *teatest.TestModel, key tea.KeyMsg) {
	tm.Send(key)
	time.Sleep(20 * time.Millisecond)
}

func sendRunesAndWait(tm *teatest.TestModel, runes []rune) {
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyRunes, Runes: runes})
}

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return out
}

func TestTUILaunchShowsTasks(t *testing.T) {
	repo := newMemRepo(
		backend.Task{Text: "Buy milk", Tags: []string{"shopping"}},
		backend.Task{Text: "Water plants"},
	)
	tm := newTestModel(t, repo, backend.ViewTodo)

	time.Sleep(100 * time.Millisecond)
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("Buy milk")) {
		t.Error("expected 'Buy milk' to be visible")
	}
	if !bytes.Contains(out, []byte("Water plants")) {
		t.Error("expected 'Water plants' to be visible")
	}
}

func TestTUIAddTask(t *testing.T) {
	repo := newMemRepo()
	tm := newTestModel(t, repo, backend.ViewTodo)

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'a'})
	for _, r := range "write report #work" {
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEnter})
	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("write report")) {
		t.Error("expected new task to appear in list")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.tasks) != 1 {
		t.Fatalf("expected one stored task, got %d", len(repo.tasks))
	}
	if got := repo.tasks[0].Tags; len(got) != 1 || got[0] != "work" {
		t.Errorf("expected tag 'work', got %v", got)
	}
}

func TestTUIInvalidEntryStaysLocal(t *testing.T) {
	repo := newMemRepo()
	tm := newTestModel(t, repo, backend.ViewTodo)

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'a'})
	for _, r := range "bad date @soon" {
		tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEnter})
	time.Sleep(100 * time.Millisecond)

	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEsc})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("invalid date")) {
		t.Error("expected inline validation message")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.tasks) != 0 {
		t.Errorf("invalid entry must never be submitted, got %d tasks", len(repo.tasks))
	}
}

func TestTUIToggleDone(t *testing.T) {
	repo := newMemRepo(backend.Task{Text: "Buy milk"})
	tm := newTestModel(t, repo, backend.ViewTodo)

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'d'})
	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'q'})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if !repo.tasks[0].Done {
		t.Error("expected the task to be marked done")
	}
}

func TestTUIDeleteWithConfirmation(t *testing.T) {
	repo := newMemRepo(backend.Task{Text: "Buy milk"})
	tm := newTestModel(t, repo, backend.ViewTodo)

	time.Sleep(100 * time.Millisecond)

	// 'x' opens the confirmation, 'n' cancels.
	sendRunesAndWait(tm, []rune{'x'})
	sendRunesAndWait(tm, []rune{'n'})
	time.Sleep(50 * time.Millisecond)

	repo.mu.Lock()
	remaining := len(repo.tasks)
	repo.mu.Unlock()
	if remaining != 1 {
		t.Fatal("cancelled delete must keep the task")
	}

	sendRunesAndWait(tm, []rune{'x'})
	sendRunesAndWait(tm, []rune{'y'})
	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'q'})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.tasks) != 0 {
		t.Error("confirmed delete must remove the task")
	}
}

func TestTUIHelp(t *testing.T) {
	repo := newMemRepo()
	tm := newTestModel(t, repo, backend.ViewTodo)

	time.Sleep(100 * time.Millisecond)

	sendRunesAndWait(tm, []rune{'?'})
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEsc})
	sendRunesAndWait(tm, []rune{'q'})

	out := readAll(t, tm.FinalOutput(t, teatest.WithFinalTimeout(time.Second)))
	if !bytes.Contains(out, []byte("Keys")) {
		t.Error("expected help panel to list key bindings")
	}
}

func TestTUIQuit(t *testing.T) {
	repo := newMemRepo()
	tm := newTestModel(t, repo, backend.ViewTodo)

	time.Sleep(100 * time.Millisecond)
	sendRunesAndWait(tm, []rune{'q'})
	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))
}
