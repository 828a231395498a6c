package notification

// manager implements Manager.
type manager struct {
	channels []Channel
	enabled  bool
}

// NewManager creates a Manager based on configuration.
func NewManager(cfg *Config, opts ...Option) (Manager, error) {
	m := &manager{
		channels: []Channel{},
		enabled:  cfg.Enabled,
	}

	for _, opt := range opts {
		opt(m)
	}

	if !cfg.Enabled {
		return m, nil
	}

	if cfg.Log.Enabled {
		m.channels = append(m.channels, newLogChannel(&cfg.Log))
	}

	return m, nil
}

// Send dispatches the notification to all channels.
func (m *manager) Send(n Notification) error {
	if !m.enabled {
		return nil
	}

	var lastErr error
	for _, ch := range m.channels {
		if err := ch.Send(n); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// SendAsync dispatches the notification without blocking.
func (m *manager) SendAsync(n Notification) {
	go func() {
		_ = m.Send(n)
	}()
}

// Close cleans up channel resources.
func (m *manager) Close() error {
	var lastErr error
	for _, ch := range m.channels {
		if err := ch.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ChannelCount returns the number of active channels.
func (m *manager) ChannelCount() int {
	return len(m.channels)
}
