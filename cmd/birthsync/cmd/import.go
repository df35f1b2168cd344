package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/birthsync/internal/cmd/output"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Import birthday events from a calendar export",
		Long: `Import decodes an iCalendar export and appends its events to the entry
store as pending entries. Events whose exact title and date already exist are
skipped, so re-importing the same export is a no-op. A malformed file commits
nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), false)
			if err != nil {
				return err
			}

			result, err := client.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output.Format(cfg.Output) != output.FormatTable {
				formatter := output.NewFormatter(output.Format(cfg.Output))
				return formatter.Format(os.Stdout, result)
			}

			fmt.Printf("Imported %d of %d events (%d duplicates skipped)\n",
				result.Appended, result.Decoded, result.Skipped)
			return nil
		},
	}
}
