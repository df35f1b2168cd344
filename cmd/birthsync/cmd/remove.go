package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id...>",
		Short: "Dismiss entries without touching the directory",
		Long: `Remove marks entries as removed so they never reach the directory. Removal
is terminal: a removed entry cannot later be applied, and re-importing the
same event will not resurrect it.

Works fully offline.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), false)
			if err != nil {
				return err
			}

			for _, id := range args {
				if err := client.Remove(id); err != nil {
					return err
				}
			}

			fmt.Printf("Removed %d entries\n", len(args))
			return nil
		},
	}
}
