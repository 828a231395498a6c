package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tasksgo/internal/config"
)

func newLoginCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in to the task server and store the credentials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, stdout)
			if err != nil {
				return err
			}
			defer a.close()

			if a.rest == nil {
				return fmt.Errorf("login is not available in offline mode")
			}

			username := a.cfg.Auth.Username
			if len(args) == 1 {
				username = args[0]
			}
			if username == "" {
				return fmt.Errorf("no username given and none configured")
			}

			password, err := readPassword(cmd, stdout, username)
			if err != nil {
				return err
			}

			if _, err := a.rest.Login(cmd.Context(), username, password); err != nil {
				return err
			}

			if a.cfg.Auth.UseKeyring {
				if err := a.creds.Set(cmd.Context(), username, password); err != nil {
					_, _ = fmt.Fprintf(stdout, "Warning: could not store credentials: %v\n", err)
				}
			}

			// Remember the username for the next invocation.
			if a.cfg.Auth.Username != username {
				a.cfg.Auth.Username = username
				if path := configPath(cmd, cliCfg); path != "" {
					_ = config.Save(a.cfg, path)
				}
			}

			_, _ = fmt.Fprintf(stdout, "Logged in as %s\n", username)
			return nil
		},
	}
}

func newLogoutCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and drop the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, stdout)
			if err != nil {
				return err
			}
			defer a.close()

			if a.rest == nil {
				return fmt.Errorf("logout is not available in offline mode")
			}

			if err := a.authenticate(cmd.Context()); err == nil {
				_ = a.rest.Logout(cmd.Context())
			}

			if a.cfg.Auth.Username != "" {
				_ = a.creds.Delete(cmd.Context(), a.cfg.Auth.Username)
			}

			_, _ = fmt.Fprintln(stdout, "Logged out")
			return nil
		},
	}
}

func newStatusCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the task server's health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, stdout)
			if err != nil {
				return err
			}
			defer a.close()

			if a.rest == nil {
				_, _ = fmt.Fprintln(stdout, "Offline mode, no server configured")
				return nil
			}
			if err := a.rest.Health(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "Server %s is up\n", a.cfg.Server.BaseURL)
			return nil
		},
	}
}

// readPassword reads the password from TASKSGO_PASSWORD, from stdin
// when it is not a terminal (tests, pipes), or with a hidden terminal
// prompt otherwise.
func readPassword(cmd *cobra.Command, stdout io.Writer, username string) (string, error) {
	if pass := os.Getenv("TASKSGO_PASSWORD"); pass != "" {
		return pass, nil
	}

	_, _ = fmt.Fprintf(stdout, "Password for %s: ", username)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pass, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(stdout)
		if err != nil {
			return "", err
		}
		return string(pass), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// configPath resolves the config file location the same way setup does.
func configPath(cmd *cobra.Command, cliCfg *Config) string {
	if cliCfg.ConfigPath != "" {
		return cliCfg.ConfigPath
	}
	if flag, _ := cmd.Flags().GetString("config"); flag != "" {
		return flag
	}
	path, err := config.Path()
	if err != nil {
		return ""
	}
	return path
}
