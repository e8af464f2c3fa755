package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStopCmd creates the "stop" subcommand, which interrupts a running
// recorder so it writes the summary and exits.
func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running recorder",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return err
			}
			return runStop(cmd, paths.PIDPath)
		},
	}
}

func runStop(cmd *cobra.Command, pidPath string) error {
	w := cmd.OutOrStdout()
	status, pid, err := DaemonStatus(pidPath)
	if err != nil {
		return fmt.Errorf("get daemon status: %w", err)
	}

	switch status {
	case StatusStopped:
		fmt.Fprintln(w, "recorder is not running")
		return nil
	case StatusStale:
		fmt.Fprintf(w, "removing stale PID file (PID %d)\n", pid)
		return RemovePIDFile(pidPath)
	case StatusRunning:
		if err := StopDaemon(pidPath); err != nil {
			return fmt.Errorf("stop recorder: %w", err)
		}
		fmt.Fprintf(w, "sent interrupt to recorder (PID %d); summary will be written on exit\n", pid)
		return nil
	}
	return nil
}
