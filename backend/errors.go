package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for repository failures. Wrapped errors carry the
// underlying cause; classify with errors.Is.
var (
	// ErrNetwork covers transport failures and unexpected HTTP
	// statuses without a more specific cause.
	ErrNetwork = errors.New("network error")

	// ErrNotFound means the mutation target no longer exists
	// server-side.
	ErrNotFound = errors.New("task not found")
)

// ValidationError reports malformed local input caught before
// submission. It never reaches the network layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateDraft checks a draft against the client-side rules: task
// text must not be empty and every tag must have at least one
// character.
func ValidateDraft(d Draft) error {
	if strings.TrimSpace(d.Text) == "" {
		return &ValidationError{Field: "text", Message: "task should have at least 1 letter"}
	}
	for i, tag := range d.Tags {
		if tag == "" {
			return &ValidationError{Field: fmt.Sprintf("tags[%d]", i), Message: "tag should not be empty"}
		}
	}
	return nil
}
