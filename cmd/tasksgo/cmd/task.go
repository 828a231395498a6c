package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tasksgo/backend"
	"tasksgo/internal/mutation"
	"tasksgo/internal/views"
)

func newAddCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, stdout)
			if err != nil {
				return err
			}
			defer a.close()

			draft := backend.Draft{Text: args[0]}
			draft.Tags, _ = cmd.Flags().GetStringArray("tag")
			if due, err := dueFlag(cmd); err != nil {
				return err
			} else {
				draft.Due = due
			}

			if err := a.authenticate(cmd.Context()); err != nil {
				return err
			}
			return outcomeErr(a.coord.Perform(cmd.Context(), mutation.Create(draft)))
		},
	}

	cmd.Flags().StringArrayP("tag", "t", nil, "Tag for the task (repeatable)")
	cmd.Flags().StringP("due", "d", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newEditCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a task's text, tags and due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, stdout)
			if err != nil {
				return err
			}
			defer a.close()

			task, err := findTask(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			draft := backend.DraftOf(*task)
			if cmd.Flags().Changed("text") {
				draft.Text, _ = cmd.Flags().GetString("text")
			}
			if cmd.Flags().Changed("tag") {
				draft.Tags, _ = cmd.Flags().GetStringArray("tag")
			}
			if cmd.Flags().Changed("due") {
				if due, err := dueFlag(cmd); err != nil {
					return err
				} else {
					draft.Due = due
				}
			}
			if clear, _ := cmd.Flags().GetBool("clear-due"); clear {
				draft.Due = nil
			}

			if err := a.authenticate(cmd.Context()); err != nil {
				return err
			}
			return outcomeErr(a.coord.Perform(cmd.Context(), mutation.Edit(task.ID, draft)))
		},
	}

	cmd.Flags().String("text", "", "New task text")
	cmd.Flags().StringArrayP("tag", "t", nil, "New tag set (repeatable, replaces all tags)")
	cmd.Flags().StringP("due", "d", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")
	return cmd
}

func newDoneCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between todo and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, stdout)
			if err != nil {
				return err
			}
			defer a.close()

			task, err := findTask(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}

			if err := a.authenticate(cmd.Context()); err != nil {
				return err
			}
			return outcomeErr(a.coord.Perform(cmd.Context(), mutation.ToggleDone(*task)))
		},
	}
}

func newDeleteCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, stdout)
			if err != nil {
				return err
			}
			defer a.close()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id: %s", args[0])
			}

			if err := a.authenticate(cmd.Context()); err != nil {
				return err
			}
			return outcomeErr(a.coord.Perform(cmd.Context(), mutation.Delete(id)))
		},
	}
	return cmd
}

// findTask resolves a task id against the full collection.
func findTask(ctx context.Context, a *app, arg string) (*backend.Task, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %s", arg)
	}

	tasks, err := a.cache.Get(ctx, backend.ViewAll)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", backend.ErrNotFound, id)
}

// dueFlag parses the --due flag into an optional date.
func dueFlag(cmd *cobra.Command) (*time.Time, error) {
	value, _ := cmd.Flags().GetString("due")
	if value == "" {
		return nil, nil
	}
	due, err := time.Parse(views.DateFormat, value)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q, want YYYY-MM-DD", value)
	}
	return &due, nil
}

// outcomeErr maps a failed mutation to a command error. The outcome
// notification has already been delivered.
func outcomeErr(out mutation.Outcome) error {
	if out.Succeeded() {
		return nil
	}
	return out.Err
}
