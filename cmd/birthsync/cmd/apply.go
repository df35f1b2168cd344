package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newApplyCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "apply [entry-id...]",
		Short: "Apply pending entries to the contact directory",
		Long: `Apply pushes each entry's birthday to its chosen candidate contact, or
creates the contact when the create sentinel is chosen. Successful entries
transition to done and are persisted immediately, so an interrupted run
never repeats work on the next one.

Directory calls run on a bounded worker pool; progress streams to stderr as
each entry completes. Ctrl-C stops new dispatches, calls already in flight
run to completion.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("pass entry IDs or --all")
			}
			if all && len(args) > 0 {
				return fmt.Errorf("pass either entry IDs or --all, not both")
			}

			client, err := newClient(cmd.Context(), true)
			if err != nil {
				return err
			}

			results, err := client.Apply(cmd.Context(), args)
			if err != nil {
				return err
			}

			var failed int
			for r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "[%d/%d] FAIL %s: %v\n", r.Completed, r.Total, r.Title, r.Err)
					continue
				}
				fmt.Fprintf(os.Stderr, "[%d/%d] done %s\n", r.Completed, r.Total, r.Title)
			}

			if failed > 0 {
				return fmt.Errorf("%d entries failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "apply every pending entry")
	return cmd
}
