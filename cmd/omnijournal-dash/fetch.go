package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"omnijournal/pkg/journal"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg is sent on every refresh interval.
type tickMsg time.Time

// entriesMsg carries the entries of the displayed day.
type entriesMsg struct {
	day     string
	entries []journal.Entry
	skipped int
	err     error
}

// recorderMsg reports whether the recorder process is alive.
type recorderMsg struct {
	running bool
	pid     int
}

// tickCmd returns a command that sends a tickMsg after 2 seconds.
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadDayCmd reads the day file for day. A missing file is an empty day.
func loadDayCmd(root string, day time.Time) tea.Cmd {
	return func() tea.Msg {
		msg := entriesMsg{day: day.Format(journal.DateLayout)}
		entries, skipped, err := journal.ReadDay(journal.DayFile(root, day))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			msg.err = err
			return msg
		}
		msg.entries = entries
		msg.skipped = skipped
		return msg
	}
}

// recorderStatusCmd checks the recorder PID file.
func recorderStatusCmd(pidPath string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(pidPath) //nolint:gosec // PID file path is controlled by the application
		if err != nil {
			return recorderMsg{}
		}
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return recorderMsg{}
		}
		proc, err := os.FindProcess(pid)
		if err != nil {
			return recorderMsg{pid: pid}
		}
		return recorderMsg{running: proc.Signal(syscall.Signal(0)) == nil, pid: pid}
	}
}
