// Package credentials stores the task server login in the OS-native
// keyring, with environment variables as a fallback for headless use.
package credentials

import (
	"context"
	"os"
)

// Source indicates where credentials were retrieved from.
type Source string

const (
	SourceKeyring     Source = "keyring"
	SourceEnvironment Source = "environment"
	SourceNone        Source = "none"
)

// Info contains credential information returned by Get.
type Info struct {
	Source   Source
	Username string
	Password string
	Found    bool
}

// Keyring is the interface for keyring operations.
type Keyring interface {
	Set(service, account, password string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// serviceName is the keyring service entry for this client.
const serviceName = "tasksgo"

// Manager handles credential operations.
type Manager struct {
	keyring Keyring
}

// ManagerOption is a functional option for Manager.
type ManagerOption func(*Manager)

// WithKeyring sets a custom keyring implementation.
func WithKeyring(k Keyring) ManagerOption {
	return func(m *Manager) {
		m.keyring = k
	}
}

// NewManager creates a new credential manager backed by the system
// keyring.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		keyring: systemKeyring{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Set stores credentials in the keyring.
func (m *Manager) Set(ctx context.Context, username, password string) error {
	return m.keyring.Set(serviceName, username, password)
}

// Get retrieves credentials: keyring first, then the
// TASKSGO_USERNAME/TASKSGO_PASSWORD environment variables.
func (m *Manager) Get(ctx context.Context, username string) (*Info, error) {
	if username != "" {
		if password, err := m.keyring.Get(serviceName, username); err == nil {
			return &Info{
				Source:   SourceKeyring,
				Username: username,
				Password: password,
				Found:    true,
			}, nil
		}
	}

	envUser := os.Getenv("TASKSGO_USERNAME")
	envPass := os.Getenv("TASKSGO_PASSWORD")
	if envUser != "" && envPass != "" {
		return &Info{
			Source:   SourceEnvironment,
			Username: envUser,
			Password: envPass,
			Found:    true,
		}, nil
	}

	return &Info{Source: SourceNone, Username: username}, nil
}

// Delete removes stored credentials, e.g. on logout.
func (m *Manager) Delete(ctx context.Context, username string) error {
	return m.keyring.Delete(serviceName, username)
}
