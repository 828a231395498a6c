package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tasksgo/backend"
	"tasksgo/internal/notification"
	"tasksgo/internal/tui"
	"tasksgo/internal/views"
)

func newTUICmd(cliCfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Outcome notifications feed the TUI status line instead
			// of stdout.
			notes := make(chan notification.Notification, 8)
			cliCfg.Notifier = append(cliCfg.Notifier, notification.WithCallback(func(n notification.Notification) {
				select {
				case notes <- n:
				default:
				}
			}))

			a, err := setup(cmd, cliCfg, nil)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.authenticate(cmd.Context()); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			model := tui.New(a.cache, a.coord, notes, backend.View(a.cfg.UI.DefaultView), views.Projection{
				Sort: views.SortDirection(a.cfg.UI.Sort),
			})

			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
