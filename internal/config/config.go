// Package config handles application configuration.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed config.sample.yaml
var sampleConfig string

// GetSampleConfig returns the embedded sample configuration content.
func GetSampleConfig() string {
	return sampleConfig
}

// ServerConfig holds task server connection settings.
type ServerConfig struct {
	BaseURL            string `yaml:"base_url"`
	Timeout            string `yaml:"timeout"` // e.g. "30s"
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// AuthConfig holds login settings. The password itself lives in the
// keyring, never in the config file.
type AuthConfig struct {
	Username   string `yaml:"username"`
	UseKeyring bool   `yaml:"use_keyring"`
}

// OfflineConfig selects the local SQLite store instead of the server.
type OfflineConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// UIConfig holds presentation defaults.
type UIConfig struct {
	DefaultView string `yaml:"default_view"` // all, todo or done
	Sort        string `yaml:"sort"`         // asc or desc
}

// NotificationsConfig holds notification settings.
type NotificationsConfig struct {
	Enabled bool                  `yaml:"enabled"`
	Log     NotificationLogConfig `yaml:"log"`
}

// NotificationLogConfig configures the notification log file.
type NotificationLogConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Offline       OfflineConfig       `yaml:"offline"`
	UI            UIConfig            `yaml:"ui"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "https://localhost:8080",
			Timeout: "30s",
		},
		Auth: AuthConfig{
			UseKeyring: true,
		},
		UI: UIConfig{
			DefaultView: "todo",
			Sort:        "asc",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Log: NotificationLogConfig{
				Enabled:   true,
				MaxSizeMB: 10,
			},
		},
	}
}

// Path returns the configuration file path, honoring XDG_CONFIG_HOME.
func Path() (string, error) {
	if p := os.Getenv("TASKSGO_CONFIG"); p != "" {
		return p, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "tasksgo", "config.yaml"), nil
}

// DataPath returns the default path for a file in the data directory,
// honoring XDG_DATA_HOME. Used for the offline database.
func DataPath(name string) (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "tasksgo", name), nil
}

// StatePath returns the default path for a file in the state
// directory, honoring XDG_STATE_HOME. Used for the notification log.
func StatePath(name string) (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "tasksgo", name), nil
}

// Load reads the configuration from path. A missing file yields the
// defaults; a malformed file is an error. Environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies TASKSGO_* environment overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKSGO_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("TASKSGO_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("TASKSGO_OFFLINE"); v == "1" || v == "true" {
		cfg.Offline.Enabled = true
	}
}

// Validate checks values that would otherwise fail deep inside a
// command.
func (c *Config) Validate() error {
	switch c.UI.DefaultView {
	case "", "all", "todo", "done":
	default:
		return fmt.Errorf("invalid default_view: %s (must be all, todo or done)", c.UI.DefaultView)
	}
	switch c.UI.Sort {
	case "", "asc", "desc":
	default:
		return fmt.Errorf("invalid sort: %s (must be 'asc' or 'desc')", c.UI.Sort)
	}
	if c.Server.Timeout != "" {
		if _, err := time.ParseDuration(c.Server.Timeout); err != nil {
			return fmt.Errorf("invalid server timeout: %w", err)
		}
	}
	return nil
}

// RequestTimeout returns the parsed server timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Save writes the configuration to path, creating directories as
// needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
