package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/birthsync/pkg/match"
)

func newChooseCommand() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "choose <entry-id> [contact-name]",
		Short: "Apply one entry to a specific contact",
		Long: `Choose binds an entry to a specific contact, overriding the default
top-ranked candidate, and applies it immediately. The name must be an exact
display name from your directory; pass --create instead of a name to create
a new contact.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := match.CreateNewContact
			switch {
			case create && len(args) == 2:
				return fmt.Errorf("pass either a contact name or --create, not both")
			case !create && len(args) < 2:
				return fmt.Errorf("contact name required (or pass --create)")
			case !create:
				name = args[1]
			}

			client, err := newClient(cmd.Context(), true)
			if err != nil {
				return err
			}

			if err := client.Engine().SetChosen(args[0], name); err != nil {
				return err
			}
			if err := client.ApplyOne(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("Applied %s -> %s\n", args[0], name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "create a new contact instead of matching an existing one")
	return cmd
}
