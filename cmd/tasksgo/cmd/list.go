package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tasksgo/backend"
	"tasksgo/internal/views"
)

// rowJSON is the --json shape of one presentation row.
type rowJSON struct {
	ID       int        `json:"id"`
	Text     string     `json:"text"`
	Tags     []string   `json:"tags"`
	Due      *time.Time `json:"due,omitempty"`
	DueLabel string     `json:"due_label,omitempty"`
	Done     bool       `json:"done"`
}

func newListCmd(stdout io.Writer, cliCfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list [all|todo|done]",
		Short:     "List tasks in a view",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"all", "todo", "done"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, cliCfg, nil)
			if err != nil {
				return err
			}
			defer a.close()

			view := backend.View(a.cfg.UI.DefaultView)
			if len(args) == 1 {
				view = backend.View(args[0])
			}
			if !view.Valid() {
				return fmt.Errorf("unknown view: %s", view)
			}

			tag, _ := cmd.Flags().GetString("tag")
			sort, _ := cmd.Flags().GetString("sort")
			if sort == "" {
				sort = a.cfg.UI.Sort
			}
			projection := views.Projection{
				Tag:  tag,
				Sort: views.SortDirection(sort),
			}

			tasks, err := a.cache.Get(cmd.Context(), view)
			if err != nil {
				return err
			}
			rows := views.Project(tasks, projection)

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				return writeRowsJSON(stdout, rows, time.Now())
			}
			writeRowsTable(stdout, rows, time.Now())
			return nil
		},
	}

	cmd.Flags().StringP("tag", "t", "", "Only show tasks carrying this tag")
	cmd.Flags().StringP("sort", "s", "", "Due-date sort direction (asc or desc)")
	return cmd
}

func writeRowsJSON(w io.Writer, rows []views.Row, today time.Time) error {
	out := make([]rowJSON, len(rows))
	for i, row := range rows {
		out[i] = rowJSON{
			ID:       row.ID,
			Text:     row.Text,
			Tags:     row.Tags,
			Due:      row.Due,
			DueLabel: row.DueLabel(today),
			Done:     row.Done,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeRowsTable(w io.Writer, rows []views.Row, today time.Time) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks.")
		return
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\t \tTASK\tTAGS\tDUE")
	for _, row := range rows {
		check := " "
		if row.Done {
			check = "✓"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			row.ID, check, row.Text, row.TagsLabel(), row.DueLabel(today))
	}
	_ = tw.Flush()
}
