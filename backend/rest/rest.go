// Package rest implements backend.Repository against the remote task
// HTTP API (JSON over HTTPS).
package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"time"

	"tasksgo/backend"
)

const (
	// DefaultBaseURL is the task server address used when none is
	// configured.
	DefaultBaseURL = "https://localhost:8080"
)

// Config holds task server connection settings.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool // self-signed development certificates
}

// ConfigFromEnv creates a Config from environment variables.
func ConfigFromEnv() Config {
	return Config{
		BaseURL: os.Getenv("TASKSGO_BASE_URL"),
	}
}

// Client implements backend.Repository over the task server REST API.
// Session credentials live in the client's cookie jar and are attached
// to every request; Login and Logout manage them.
type Client struct {
	config  Config
	client  *http.Client
	baseURL string
}

// New creates a new REST client.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client, err := createHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:  cfg,
		client:  client,
		baseURL: baseURL,
	}, nil
}

// createHTTPClient creates an HTTP client with connection pooling and
// a cookie jar for the session token.
func createHTTPClient(cfg Config) (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
	}, nil
}

// Close closes idle connections held by the client.
func (c *Client) Close() error {
	if transport, ok := c.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
	return nil
}

// doRequest performs a request against the task server. A non-nil body
// is sent as JSON. Transport failures are reported as
// backend.ErrNetwork; status handling is left to the caller.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrNetwork, err)
	}
	return resp, nil
}

// viewPath maps a view to its collection endpoint.
func viewPath(view backend.View) (string, error) {
	switch view {
	case backend.ViewAll:
		return "/task", nil
	case backend.ViewTodo:
		return "/todo", nil
	case backend.ViewDone:
		return "/done", nil
	}
	return "", fmt.Errorf("unknown view: %s", view)
}

// ListTasks returns the tasks in the given view. Never retries.
func (c *Client) ListTasks(ctx context.Context, view backend.View) ([]backend.Task, error) {
	path, err := viewPath(view)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list %s: status %d", backend.ErrNetwork, view, resp.StatusCode)
	}

	var tasks []backend.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("%w: decode task list: %v", backend.ErrNetwork, err)
	}
	return tasks, nil
}

// CreateTask stores a new task on the server. The draft is validated
// locally first so malformed input never reaches the network.
func (c *Client) CreateTask(ctx context.Context, draft backend.Draft) error {
	if err := backend.ValidateDraft(draft); err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/task", draft)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: create task: status %d", backend.ErrNetwork, resp.StatusCode)
	}
	return nil
}

// UpdateTask replaces the full record of the task with the given id.
func (c *Client) UpdateTask(ctx context.Context, id int, draft backend.Draft) error {
	if err := backend.ValidateDraft(draft); err != nil {
		return err
	}

	resp, err := c.doRequest(ctx, http.MethodPut, "/task/"+strconv.Itoa(id), draft)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: update task %d", backend.ErrNotFound, id)
	default:
		return fmt.Errorf("%w: update task %d: status %d", backend.ErrNetwork, id, resp.StatusCode)
	}
}

// DeleteTask removes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/task/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: delete task %d", backend.ErrNotFound, id)
	default:
		return fmt.Errorf("%w: delete task %d: status %d", backend.ErrNetwork, id, resp.StatusCode)
	}
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health: status %d", backend.ErrNetwork, resp.StatusCode)
	}
	return nil
}

var _ backend.Repository = (*Client)(nil)
