package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.True(t, cfg.Auth.UseKeyring)
	assert.Equal(t, "todo", cfg.UI.DefaultView)
	assert.Equal(t, "asc", cfg.UI.Sort)
	assert.True(t, cfg.Notifications.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  base_url: https://tasks.example.com
  timeout: 5s
  insecure_skip_verify: true
auth:
  username: alice
ui:
  default_view: all
  sort: desc
offline:
  enabled: true
  db_path: /tmp/tasks.db
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.True(t, cfg.Server.InsecureSkipVerify)
	assert.Equal(t, "alice", cfg.Auth.Username)
	assert.Equal(t, "all", cfg.UI.DefaultView)
	assert.Equal(t, "desc", cfg.UI.Sort)
	assert.True(t, cfg.Offline.Enabled)
	assert.Equal(t, "/tmp/tasks.db", cfg.Offline.DBPath)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a mapping"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKSGO_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("TASKSGO_USERNAME", "bob")
	t.Setenv("TASKSGO_OFFLINE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Server.BaseURL)
	assert.Equal(t, "bob", cfg.Auth.Username)
	assert.True(t, cfg.Offline.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad view", func(c *Config) { c.UI.DefaultView = "archived" }, true},
		{"bad sort", func(c *Config) { c.UI.Sort = "sideways" }, true},
		{"bad timeout", func(c *Config) { c.Server.Timeout = "soon" }, true},
		{"empty timeout", func(c *Config) { c.Server.Timeout = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Auth.Username = "alice"
	cfg.Server.BaseURL = "https://tasks.example.com"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Auth.Username, loaded.Auth.Username)
	assert.Equal(t, cfg.Server.BaseURL, loaded.Server.BaseURL)
	assert.Equal(t, cfg.UI, loaded.UI)
}

func TestPathHonorsEnv(t *testing.T) {
	t.Setenv("TASKSGO_CONFIG", "/etc/tasksgo.yaml")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/etc/tasksgo.yaml", p)

	t.Setenv("TASKSGO_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err = Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "tasksgo", "config.yaml"), p)
}

func TestSampleConfigParses(t *testing.T) {
	cfg := Default()
	require.NoError(t, yaml.Unmarshal([]byte(GetSampleConfig()), cfg))
	require.NoError(t, cfg.Validate())
}
