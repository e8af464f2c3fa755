package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newRunCmd creates the "run" subcommand that records in the foreground until
// interrupted.
func newRunCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Record activity until interrupted, then compile the daily summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			paths, err := ResolvePaths()
			if err != nil {
				return err
			}

			status, pid, err := DaemonStatus(paths.PIDPath)
			if err != nil {
				return err
			}
			if status == StatusRunning {
				return fmt.Errorf("recorder already running (PID %d)", pid)
			}

			if err := WritePIDFile(paths.PIDPath, os.Getpid()); err != nil {
				return err
			}
			ctx, cleanup := SetupSignalHandler(cmd.Context(), paths.PIDPath)
			defer cleanup()

			out := cmd.OutOrStdout()
			isTTY := isatty.IsTerminal(os.Stdout.Fd())
			s, err := newSession(cfg, out, isTTY, defaultProviders(cfg))
			if err != nil {
				return err
			}
			return s.run(ctx)
		},
	}
}
