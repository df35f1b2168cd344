package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/birthsync/internal/cmd/output"
)

func newCandidatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <entry-id>",
		Short: "Show ranked contact candidates for an entry",
		Long: `Candidates ranks your directory contacts against the entry's title by
fuzzy name similarity and lists those scoring above the match threshold,
best first. When no contact qualifies, the single "create new contact"
candidate is listed instead.

The chosen candidate is marked with an asterisk; by default that is the
top-ranked one. Use choose to override it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), true)
			if err != nil {
				return err
			}

			candidates, err := client.Engine().Candidates(args[0])
			if err != nil {
				return err
			}
			chosen, err := client.Engine().Chosen(args[0])
			if err != nil {
				return err
			}

			format := output.Format(cfg.Output)
			if format != output.FormatTable {
				return output.NewFormatter(format).Format(os.Stdout, candidates)
			}

			data := output.Data{Headers: []string{"", "Rank", "Candidate"}}
			for i, c := range candidates {
				mark := ""
				if c.Name == chosen.Name {
					mark = "*"
				}
				data.Rows = append(data.Rows, []string{mark, fmt.Sprintf("%d", i+1), c.Name})
			}
			return output.NewFormatter(format).Format(os.Stdout, data)
		},
	}
}
