package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/birthsync/internal/auth"
)

func newAuthCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to the contact directory",
		Long: `Auth runs the browser-based OAuth flow and caches the obtained token under
the config directory. Other commands that need directory access run the same
flow automatically on first use; this command exists to refresh access
explicitly, e.g. after revoking the grant.

Place your downloaded OAuth client secrets at:

    $HOME/.config/birthsync/credentials.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := auth.ResetToken(); err != nil {
					return err
				}
			}

			if _, err := auth.Service(cmd.Context()); err != nil {
				return err
			}

			dir, err := auth.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Printf("Authorized. Token cached in %s\n", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "discard the cached token and re-authorize")
	return cmd
}
