package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tasksgo/internal/config"
)

func newConfigCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd, cliCfg)
			if path == "" {
				return fmt.Errorf("could not determine config path")
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.GetSampleConfig()), 0644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd, cliCfg)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "config file: %s\n", path)
			_, _ = fmt.Fprintf(stdout, "server:      %s\n", cfg.Server.BaseURL)
			_, _ = fmt.Fprintf(stdout, "username:    %s\n", cfg.Auth.Username)
			_, _ = fmt.Fprintf(stdout, "offline:     %v\n", cfg.Offline.Enabled)
			_, _ = fmt.Fprintf(stdout, "view:        %s (%s)\n", cfg.UI.DefaultView, cfg.UI.Sort)
			return nil
		},
	})

	return cmd
}
