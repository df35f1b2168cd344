// Package cmd implements the birthsync command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/birthsync"
	"github.com/agentstation/birthsync/internal/auth"
	"github.com/agentstation/birthsync/internal/people"
	"github.com/agentstation/birthsync/pkg/logging"
)

// cfg is the resolved configuration, populated in setup before any command
// body runs.
var cfg *Config

var rootCmd = &cobra.Command{
	Use:   "birthsync",
	Short: "Sync calendar birthdays into your contact directory",
	Long: `Birthsync imports birthday events from calendar exports, matches each one
against your contact directory by fuzzy name similarity, and applies the
birthday to the matched contact (or creates a new contact) with a bounded
concurrent pipeline.

Entries live in a plain CSV file next to your data; import, list and remove
work fully offline. Candidate listing and apply need directory access and
run the OAuth flow on first use.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is $HOME/.birthsync.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	pf.Bool("no-color", false, "disable colored output")
	pf.StringP("output", "o", "", "output format: table, json, yaml")
	pf.String("store", "", "entry store file (default calendar.csv)")
	pf.Int("workers", 0, "concurrent directory calls during apply")
	pf.Float64("threshold", 0, "minimum match score a candidate must exceed")
	pf.Int("limit", 0, "maximum candidates listed per entry")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	for _, name := range []string{"config", "verbose", "quiet", "no-color", "output", "store", "workers", "threshold", "limit", "log-level"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newCandidatesCommand())
	rootCmd.AddCommand(newChooseCommand())
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newRemoveCommand())
	rootCmd.AddCommand(newAuthCommand())
}

// Execute runs the CLI with the given context. Errors are printed here so
// main only has to set the exit code.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// setup loads configuration and installs the process logger before any
// command body runs.
func setup(cmd *cobra.Command, _ []string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg = config

	logger := NewLogger(cfg)
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
	return nil
}

// newClient builds the birthsync client from the resolved configuration.
// Commands that never talk to the directory pass withDirectory false and
// skip authentication entirely.
func newClient(ctx context.Context, withDirectory bool) (birthsync.Client, error) {
	opts := []birthsync.Option{
		birthsync.WithStorePath(cfg.StorePath),
		birthsync.WithWorkers(cfg.Workers),
		birthsync.WithThreshold(cfg.MatchThreshold),
		birthsync.WithLimit(cfg.MatchLimit),
		birthsync.WithLogger(logging.Default()),
	}

	if withDirectory {
		svc, err := auth.Service(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, birthsync.WithDirectory(people.NewClient(svc)))
	}

	return birthsync.New(opts...)
}
