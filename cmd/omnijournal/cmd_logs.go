package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"omnijournal/pkg/config"
	"omnijournal/pkg/eventlog"
	"omnijournal/pkg/journal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// logsConfig holds configuration for the logs command.
type logsConfig struct {
	tail     int
	follow   bool
	typ      string
	date     string
	contains string
}

// newLogsCmd creates the "omnijournal logs" subcommand.
func newLogsCmd(load configLoader) *cobra.Command {
	var lc logsConfig

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show journal entries for a day",
		Long:  "Displays entries from the journal, newest last.\nReads the event index when present and falls back to the day file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			day, err := parseDay(lc.date, time.Now())
			if err != nil {
				return err
			}
			if lc.typ != "" && !journal.Type(strings.ToUpper(lc.typ)).Valid() {
				return fmt.Errorf("unknown entry type %q", lc.typ)
			}

			opts := eventlog.QueryOpts{
				Type:     journal.Type(strings.ToUpper(lc.typ)),
				Day:      day.Format(journal.DateLayout),
				Contains: lc.contains,
			}
			w := cmd.OutOrStdout()
			styled := isatty.IsTerminal(os.Stdout.Fd())

			if lc.follow {
				return followLogs(cmd.Context(), w, journal.DayFile(cfg.LogRoot, day), opts, lc.tail, styled)
			}
			return printLogs(cmd.Context(), w, cfg, opts, lc.tail, styled)
		},
	}

	cmd.Flags().IntVar(&lc.tail, "tail", 20, "number of recent entries to show (0 = all)")
	cmd.Flags().BoolVarP(&lc.follow, "follow", "f", false, "poll the day file for new entries every 1s")
	cmd.Flags().StringVar(&lc.typ, "type", "", "only show entries of this type (FOCUS, WIFI, ...)")
	cmd.Flags().StringVar(&lc.date, "date", "", "day to show as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&lc.contains, "grep", "", "only show entries whose content contains this text")

	return cmd
}

// parseDay returns the local date named by s, or now when s is empty.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(journal.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// printLogs displays the last tail matching entries.
func printLogs(ctx context.Context, w io.Writer, cfg config.Config, opts eventlog.QueryOpts, tail int, styled bool) error {
	opts.Limit = tail
	entries, err := queryEntries(ctx, cfg, opts)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "no entries found")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintln(w, journal.FormatLine(e, styled))
	}
	return nil
}

// queryEntries asks the event index first and reads the day file directly
// when the index is missing or disabled.
func queryEntries(ctx context.Context, cfg config.Config, opts eventlog.QueryOpts) ([]journal.Entry, error) {
	if cfg.IndexEnabled {
		idx, err := eventlog.OpenReader(cfg.IndexPath())
		if err == nil {
			defer idx.Close()
			return idx.Query(ctx, opts)
		}
		slog.Debug("event index unavailable, reading day file", "err", err)
	}

	day, err := time.ParseInLocation(journal.DateLayout, opts.Day, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse day: %w", err)
	}
	entries, err := readFiltered(journal.DayFile(cfg.LogRoot, day), opts)
	if err != nil {
		return nil, err
	}
	return lastN(entries, opts.Limit), nil
}

// readFiltered reads a day file and keeps entries matching opts. A missing
// file yields no entries.
func readFiltered(path string, opts eventlog.QueryOpts) ([]journal.Entry, error) {
	all, skipped, err := journal.ReadDay(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.Debug("skipped malformed journal lines", "path", path, "count", skipped)
	}

	needle := strings.ToLower(opts.Contains)
	var out []journal.Entry
	for _, e := range all {
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Content), needle) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func lastN(entries []journal.Entry, n int) []journal.Entry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// followLogs prints the tail of the day file and then polls it for appended
// entries until ctx is cancelled.
func followLogs(ctx context.Context, w io.Writer, path string, opts eventlog.QueryOpts, tail int, styled bool) error {
	entries, err := readFiltered(path, opts)
	if err != nil {
		return err
	}
	for _, e := range lastN(entries, tail) {
		fmt.Fprintln(w, journal.FormatLine(e, styled))
	}
	seen := len(entries)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			entries, err := readFiltered(path, opts)
			if err != nil {
				return err
			}
			if len(entries) < seen {
				seen = 0
			}
			for _, e := range entries[seen:] {
				fmt.Fprintln(w, journal.FormatLine(e, styled))
			}
			seen = len(entries)
		}
	}
}
