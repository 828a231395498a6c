package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tasksgo/backend"
)

// ErrUnauthorized means the server rejected the supplied credentials.
var ErrUnauthorized = errors.New("unauthorized")

// loginRequest is the /login wire payload.
type loginRequest struct {
	Name string `json:"name"`
	Pass string `json:"pass"`
}

// Login authenticates against the server. On success the session
// cookie lands in the client's jar and rides along on every later
// request; the returned token is the response body for callers that
// want to persist it.
func (c *Client) Login(ctx context.Context, name, pass string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", loginRequest{Name: name, Pass: pass})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return "", fmt.Errorf("%w: login failed for %q", ErrUnauthorized, name)
	default:
		return "", fmt.Errorf("%w: login: status %d", backend.ErrNetwork, resp.StatusCode)
	}

	token, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read login token: %w", err)
	}
	return strings.TrimSpace(string(token)), nil
}

// Logout invalidates the current session. The server clears the
// session cookie; the jar picks up the expired cookie automatically.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: logout without a session", ErrUnauthorized)
	default:
		return fmt.Errorf("logout: status %d", resp.StatusCode)
	}
}
