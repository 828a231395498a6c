package notification

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// logChannel appends notifications to a log file with size-based
// rotation.
type logChannel struct {
	config *LogConfig
	file   *os.File
	mu     sync.Mutex
}

func newLogChannel(cfg *LogConfig) Channel {
	return &logChannel{config: cfg}
}

// Send writes a notification line to the log file.
func (c *logChannel) Send(n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureFile(); err != nil {
		return err
	}

	// Format: 2026-01-16T10:30:00Z [SUCCESS] Task created
	line := fmt.Sprintf("%s [%s] %s\n",
		n.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		strings.ToUpper(string(n.Type)), n.Message)

	if _, err := c.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}
	return c.file.Sync()
}

// ensureFile opens the log file, creating directories and rotating
// first if needed.
func (c *logChannel) ensureFile() error {
	if c.file != nil {
		return nil
	}

	dir := filepath.Dir(c.config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	if err := c.rotateIfNeeded(); err != nil {
		return err
	}

	file, err := os.OpenFile(c.config.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	c.file = file
	return nil
}

// rotateIfNeeded renames the log file aside once it exceeds the
// configured size.
func (c *logChannel) rotateIfNeeded() error {
	info, err := os.Stat(c.config.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	maxBytes := int64(c.config.MaxSizeMB) * 1024 * 1024
	if maxBytes == 0 || info.Size() < maxBytes {
		return nil
	}

	if err := os.Rename(c.config.Path, c.config.Path+".old"); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return nil
}

// Close closes the log file.
func (c *logChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file != nil {
		err := c.file.Close()
		c.file = nil
		return err
	}
	return nil
}

// ReadLog returns all entries from a notification log file.
func ReadLog(path string) ([]string, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		entries = append(entries, scanner.Text())
	}
	return entries, scanner.Err()
}
