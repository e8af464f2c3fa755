package main

import (
	"fmt"
	"os"

	"omnijournal/pkg/eventlog"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newReindexCmd creates the "omnijournal reindex" subcommand, which rebuilds
// the event index from the day files.
func newReindexCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the event index from the journal files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			log := newStartupLog(cmd.OutOrStdout(), isatty.IsTerminal(os.Stdout.Fd()))
			idx, err := eventlog.Open(cfg.IndexPath())
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer idx.Close()

			stop := log.StartSpinner("Reindexing " + cfg.LogRoot)
			stats, err := idx.Reindex(cmd.Context(), cfg.LogRoot)
			if err != nil {
				stop(false)
				return err
			}
			stop(true)
			log.Step(fmt.Sprintf("Indexed %d entries from %d files (%d malformed lines skipped)", stats.Entries, stats.Files, stats.Skipped))
			return nil
		},
	}
}
