// Package notification delivers user-facing outcome notifications for
// task mutations and session events.
package notification

import (
	"time"
)

// Type identifies the kind of notification.
type Type string

const (
	NotifySuccess Type = "success"
	NotifyError   Type = "error"
	NotifySession Type = "session"
)

// Notification represents a single user-facing message.
type Notification struct {
	Type       Type
	Message    string
	MutationID string // correlates with the mutation that produced it
	Timestamp  time.Time
}

// Manager dispatches notifications to the configured channels.
type Manager interface {
	Send(n Notification) error
	SendAsync(n Notification)
	Close() error
	ChannelCount() int
}

// Channel is a single notification sink.
type Channel interface {
	Send(n Notification) error
	Close() error
}

// Config holds the notification configuration.
type Config struct {
	Enabled bool
	Log     LogConfig
}

// LogConfig configures the notification log file.
type LogConfig struct {
	Enabled   bool
	Path      string
	MaxSizeMB int
}

// Option is a functional option for the manager.
type Option func(*manager)

// WithCallback registers a callback channel; the UI uses this to show
// transient status messages.
func WithCallback(fn func(Notification)) Option {
	return func(m *manager) {
		m.channels = append(m.channels, callbackChannel{fn: fn})
	}
}

// callbackChannel forwards notifications to a function.
type callbackChannel struct {
	fn func(Notification)
}

func (c callbackChannel) Send(n Notification) error {
	c.fn(n)
	return nil
}

func (c callbackChannel) Close() error { return nil }
