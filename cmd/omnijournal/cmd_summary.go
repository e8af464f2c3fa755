package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"omnijournal/pkg/journal"
	"omnijournal/pkg/ollama"
	"omnijournal/pkg/summary"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newSummaryCmd creates the "omnijournal summary" subcommand, which compiles
// the summary for a day without running the recorder.
func newSummaryCmd(load configLoader) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compile the narrative summary for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			day, err := parseDay(date, time.Now())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			log := newStartupLog(w, isatty.IsTerminal(os.Stdout.Fd()))
			compiler := summary.NewCompiler(cfg.LogRoot, textProvider(cfg, ollama.New(cfg.OllamaURL)),
				summary.WithBudget(cfg.SummaryBudget),
				summary.WithOutput(w),
			)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SummaryDeadline())
			defer cancel()

			stop := log.StartSpinner("Compiling summary for " + day.Format(journal.DateLayout))
			res, err := compiler.Compile(ctx, day)
			if errors.Is(err, summary.ErrNoEntries) {
				stop(false)
				return fmt.Errorf("no journal entries for %s", day.Format(journal.DateLayout))
			}
			if err != nil {
				stop(false)
				return err
			}
			stop(true)
			log.Step(fmt.Sprintf("Summary saved: %s (%d entries, %d chars sent)", res.Path, res.Entries, res.InputChars))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to summarize as YYYY-MM-DD (default today)")
	return cmd
}
