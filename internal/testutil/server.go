// Package testutil provides shared test fixtures, chiefly an
// in-memory task server speaking the client's wire protocol.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"tasksgo/backend"
)

// FakeServer is an httptest-backed task server holding tasks in
// memory. It implements the endpoints the client uses: task
// collections, mutations, login/logout and health.
type FakeServer struct {
	srv *httptest.Server

	mu        sync.Mutex
	nextID    int
	tasks     map[int]backend.Task
	listCalls int

	// Password, when set, is required by /login. Mutations do not
	// enforce a session; auth is the server's concern, not the
	// client's.
	Password string

	failStatus int
	failCount  int
}

// NewFakeServer starts a fake task server. Callers must Close it.
func NewFakeServer() *FakeServer {
	s := &FakeServer{
		nextID: 1,
		tasks:  make(map[int]backend.Task),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("GET /task", s.listHandler(backend.ViewAll))
	mux.HandleFunc("GET /todo", s.listHandler(backend.ViewTodo))
	mux.HandleFunc("GET /done", s.listHandler(backend.ViewDone))
	mux.HandleFunc("POST /task", s.createHandler)
	mux.HandleFunc("PUT /task/{id}", s.updateHandler)
	mux.HandleFunc("DELETE /task/{id}", s.deleteHandler)
	mux.HandleFunc("POST /login", s.loginHandler)
	mux.HandleFunc("POST /logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session_token", MaxAge: -1})
	})

	s.srv = httptest.NewServer(mux)
	return s
}

// URL returns the server's base URL.
func (s *FakeServer) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *FakeServer) Close() {
	s.srv.Close()
}

// Add stores a task directly, assigning an id. Returns the id.
func (s *FakeServer) Add(t backend.Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	if t.Tags == nil {
		t.Tags = []string{}
	}
	s.tasks[t.ID] = t
	return t.ID
}

// Task returns the stored task and whether it exists.
func (s *FakeServer) Task(id int) (backend.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

// ListCalls returns how many collection fetches the server has seen.
func (s *FakeServer) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// FailNext makes the next n requests fail with the given status.
func (s *FakeServer) FailNext(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failCount = n
}

// shouldFail consumes one injected failure, if any.
func (s *FakeServer) shouldFail() (int, bool) {
	if s.failCount > 0 {
		s.failCount--
		return s.failStatus, true
	}
	return 0, false
}

func (s *FakeServer) listHandler(view backend.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if status, fail := s.shouldFail(); fail {
			w.WriteHeader(status)
			return
		}
		s.listCalls++

		tasks := make([]backend.Task, 0, len(s.tasks))
		for _, t := range s.tasks {
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
			tasks = append(tasks, t)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tasks)
	}
}

func (s *FakeServer) createHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.shouldFail(); fail {
		w.WriteHeader(status)
		return
	}

	var draft backend.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil || draft.Text == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	t := draftToTask(draft)
	t.ID = s.nextID
	s.nextID++
	s.tasks[t.ID] = t
	w.WriteHeader(http.StatusCreated)
}

func (s *FakeServer) updateHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.shouldFail(); fail {
		w.WriteHeader(status)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, ok := s.tasks[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var draft backend.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	t := draftToTask(draft)
	t.ID = id
	s.tasks[id] = t
}

func (s *FakeServer) deleteHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status, fail := s.shouldFail(); fail {
		w.WriteHeader(status)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, ok := s.tasks[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	delete(s.tasks, id)
}

func (s *FakeServer) loginHandler(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Name string `json:"name"`
		Pass string `json:"pass"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	password := s.Password
	s.mu.Unlock()
	if password != "" && creds.Pass != password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token := "token-" + creds.Name
	http.SetCookie(w, &http.Cookie{Name: "session_token", Value: token, HttpOnly: true})
	_, _ = w.Write([]byte(token))
}

// draftToTask converts a wire draft into a stored task, applying the
// no-due-date sentinel the way the real server does.
func draftToTask(draft backend.Draft) backend.Task {
	t := backend.Task{
		Text: draft.Text,
		Tags: draft.Tags,
		Done: draft.Done,
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if draft.Due != nil {
		t.Due = *draft.Due
	}
	return t
}
