package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/birthsync/internal/cmd/output"
	"github.com/agentstation/birthsync/pkg/store"
)

func newListCommand() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries in the store",
		Long: `List shows the entries in the store with their ID, title, date and state.
Pending titles that appear with more than one distinct date are flagged as
duplicates; a duplicate is advisory and never blocks an apply.

Works fully offline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), false)
			if err != nil {
				return err
			}

			entries := client.Store().Entries()
			if state != "" {
				entries = filterByState(entries, state)
			}

			duplicates := make(map[string]bool)
			for _, title := range client.Engine().DuplicateTitles() {
				duplicates[title] = true
			}

			format := output.Format(cfg.Output)
			if format != output.FormatTable {
				type row struct {
					store.Entry
					Duplicate bool `json:"duplicate" yaml:"duplicate"`
				}
				rows := make([]row, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, row{Entry: e, Duplicate: duplicates[e.Title]})
				}
				return output.NewFormatter(format).Format(os.Stdout, rows)
			}

			if cfg.NoColor {
				color.NoColor = true
			}
			highlight := color.New(color.FgYellow).SprintFunc()

			data := output.Data{Headers: []string{"ID", "Title", "Date", "State", ""}}
			for _, e := range entries {
				flag := ""
				if duplicates[e.Title] {
					flag = highlight("DUP")
				}
				data.Rows = append(data.Rows, []string{e.ID, e.Title, e.Date.String(), e.State.String(), flag})
			}
			if err := output.NewFormatter(format).Format(os.Stdout, data); err != nil {
				return err
			}

			fmt.Printf("\n%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "filter by state: pending, done, removed")
	return cmd
}

// filterByState keeps only entries whose state matches the given name.
// Unknown names match nothing rather than failing.
func filterByState(entries []store.Entry, state string) []store.Entry {
	var filtered []store.Entry
	for _, e := range entries {
		if e.State.String() == state {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
