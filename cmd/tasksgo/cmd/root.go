// Package cmd implements the tasksgo command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tasksgo/backend"
	"tasksgo/backend/rest"
	"tasksgo/backend/sqlite"
	"tasksgo/internal/config"
	"tasksgo/internal/credentials"
	"tasksgo/internal/mutation"
	"tasksgo/internal/notification"
	"tasksgo/internal/queries"
)

// Version is set at build time.
var Version = "dev"

// Config holds test-injectable overrides for the CLI.
type Config struct {
	ConfigPath string                // config file (for testing)
	BaseURL    string                // overrides the configured server
	Offline    bool                  // force the local SQLite store
	DBPath     string                // offline database path (for testing)
	Keyring    credentials.Keyring   // custom keyring (for testing)
	Notifier   []notification.Option // extra notification channels (for testing)
}

// Execute runs the CLI with the given arguments and IO writers.
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewTasksGo(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewTasksGo creates the root command with injectable IO.
func NewTasksGo(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "tasksgo",
		Short:   "A client for the TasksGo task server",
		Long:    "tasksgo tracks your todos against a remote task server, or a local database when offline.",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().String("server", "", "Task server base URL")
	cmd.PersistentFlags().Bool("offline", false, "Use the local database instead of the server")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	cmd.AddCommand(
		newListCmd(stdout, cfg),
		newAddCmd(stdout, cfg),
		newEditCmd(stdout, cfg),
		newDoneCmd(stdout, cfg),
		newDeleteCmd(stdout, cfg),
		newLoginCmd(stdout, cfg),
		newLogoutCmd(stdout, cfg),
		newStatusCmd(stdout, cfg),
		newTUICmd(cfg),
		newConfigCmd(stdout, cfg),
	)

	return cmd
}

// app bundles the per-invocation collaborators.
type app struct {
	cfg      *config.Config
	repo     backend.Repository
	rest     *rest.Client // nil in offline mode
	cache    *queries.Cache
	coord    *mutation.Coordinator
	notifier notification.Manager
	creds    *credentials.Manager
}

// setup builds the application from config, flags and environment.
// The query cache lives for the duration of one invocation (one
// session) and is torn down with the repository.
func setup(cmd *cobra.Command, cliCfg *Config, out io.Writer) (*app, error) {
	path := cliCfg.ConfigPath
	if path == "" {
		if flag, _ := cmd.Flags().GetString("config"); flag != "" {
			path = flag
		} else {
			var err error
			path, err = config.Path()
			if err != nil {
				return nil, err
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cliCfg.BaseURL != "" {
		cfg.Server.BaseURL = cliCfg.BaseURL
	}
	if flag, _ := cmd.Flags().GetString("server"); flag != "" {
		cfg.Server.BaseURL = flag
	}
	if flag, _ := cmd.Flags().GetBool("offline"); flag || cliCfg.Offline {
		cfg.Offline.Enabled = true
	}
	if cliCfg.DBPath != "" {
		cfg.Offline.DBPath = cliCfg.DBPath
	}

	a := &app{cfg: cfg}

	if err := a.initNotifier(cliCfg, out); err != nil {
		return nil, err
	}
	if err := a.initRepository(cliCfg); err != nil {
		return nil, err
	}

	a.cache = queries.New(a.repo)
	a.coord = mutation.New(a.repo, a.cache, a.notifier)
	return a, nil
}

func (a *app) initNotifier(cliCfg *Config, out io.Writer) error {
	logPath := a.cfg.Notifications.Log.Path
	if logPath == "" {
		var err error
		logPath, err = config.StatePath("notifications.log")
		if err != nil {
			return err
		}
	}

	notifCfg := &notification.Config{
		Enabled: a.cfg.Notifications.Enabled,
		Log: notification.LogConfig{
			Enabled:   a.cfg.Notifications.Log.Enabled,
			Path:      logPath,
			MaxSizeMB: a.cfg.Notifications.Log.MaxSizeMB,
		},
	}

	opts := append([]notification.Option{}, cliCfg.Notifier...)
	if out != nil {
		opts = append(opts, notification.WithCallback(func(n notification.Notification) {
			_, _ = fmt.Fprintln(out, n.Message)
		}))
	}

	notifier, err := notification.NewManager(notifCfg, opts...)
	if err != nil {
		return err
	}
	a.notifier = notifier
	return nil
}

func (a *app) initRepository(cliCfg *Config) error {
	keyring := cliCfg.Keyring
	if keyring != nil {
		a.creds = credentials.NewManager(credentials.WithKeyring(keyring))
	} else {
		a.creds = credentials.NewManager()
	}

	if a.cfg.Offline.Enabled {
		dbPath := a.cfg.Offline.DBPath
		if dbPath == "" {
			var err error
			dbPath, err = config.DataPath("tasks.db")
			if err != nil {
				return err
			}
		}
		store, err := sqlite.New(dbPath)
		if err != nil {
			return err
		}
		a.repo = store
		return nil
	}

	client, err := rest.New(rest.Config{
		BaseURL:            a.cfg.Server.BaseURL,
		Timeout:            a.cfg.RequestTimeout(),
		InsecureSkipVerify: a.cfg.Server.InsecureSkipVerify,
	})
	if err != nil {
		return err
	}
	a.repo = client
	a.rest = client
	return nil
}

// authenticate performs a best-effort login with stored credentials so
// mutations carry a session. Reads work unauthenticated.
func (a *app) authenticate(ctx context.Context) error {
	if a.rest == nil {
		return nil
	}
	info, err := a.creds.Get(ctx, a.cfg.Auth.Username)
	if err != nil || !info.Found {
		return nil
	}
	_, err = a.rest.Login(ctx, info.Username, info.Password)
	return err
}

// close releases the per-invocation resources.
func (a *app) close() {
	_ = a.repo.Close()
	_ = a.notifier.Close()
}
