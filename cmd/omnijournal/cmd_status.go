package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"omnijournal/pkg/journal"
	"omnijournal/pkg/summary"

	"github.com/spf13/cobra"
)

// newStatusCmd creates the "omnijournal status" subcommand.
func newStatusCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show recorder state and today's journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			paths, err := ResolvePaths()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			status, pid, err := DaemonStatus(paths.PIDPath)
			if err != nil {
				return err
			}
			switch status {
			case StatusRunning:
				fmt.Fprintf(w, "recorder: running (PID %d)\n", pid)
			case StatusStale:
				fmt.Fprintf(w, "recorder: stale PID file (PID %d)\n", pid)
			default:
				fmt.Fprintln(w, "recorder: stopped")
			}

			now := time.Now()
			path := journal.DayFile(cfg.LogRoot, now)
			entries, skipped, err := journal.ReadDay(path)
			switch {
			case errors.Is(err, os.ErrNotExist):
				fmt.Fprintf(w, "journal:  %s (no entries yet)\n", path)
			case err != nil:
				return err
			default:
				fmt.Fprintf(w, "journal:  %s (%d entries", path, len(entries))
				if skipped > 0 {
					fmt.Fprintf(w, ", %d malformed", skipped)
				}
				fmt.Fprintln(w, ")")
				if len(entries) > 0 {
					last := entries[len(entries)-1]
					fmt.Fprintf(w, "last:     %s\n", journal.FormatLine(last, false))
				}
			}

			artifact := summary.ArtifactPath(cfg.LogRoot, now)
			if _, err := os.Stat(artifact); err == nil {
				fmt.Fprintf(w, "summary:  %s\n", artifact)
			} else {
				fmt.Fprintln(w, "summary:  not written yet")
			}
			return nil
		},
	}
}
