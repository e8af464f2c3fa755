package main

import (
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// fsChangeMsg is sent when a file under the journal root changes.
type fsChangeMsg struct{}

// initWatcher creates a watcher on the journal root. Returns nil if the
// directory does not exist or the watcher cannot be created; the dashboard
// then relies on the tick alone.
func initWatcher(root string) *fsnotify.Watcher {
	if _, err := os.Stat(root); err != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("fsnotify: create watcher failed, polling only", "err", err)
		return nil
	}

	if err := watcher.Add(root); err != nil {
		_ = watcher.Close()
		slog.Warn("fsnotify: watch failed, polling only", "path", root, "err", err)
		return nil
	}

	return watcher
}

// waitForChange returns a tea.Cmd that blocks until the watcher reports a
// change and the debounce window passes. It must be re-issued after each
// fsChangeMsg.
func waitForChange(watcher *fsnotify.Watcher) tea.Cmd {
	if watcher == nil {
		return nil
	}
	return func() tea.Msg {
		debounceTimer := newDebounceTimer()
		defer debounceTimer.Stop()

		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				resetDebounceTimer(debounceTimer)

			case <-debounceTimer.C:
				return fsChangeMsg{}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				slog.Warn("fsnotify: watcher error", "err", err)
				return nil
			}
		}
	}
}

// newDebounceTimer creates a stopped timer for debouncing events.
func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

// resetDebounceTimer restarts the debounce window.
func resetDebounceTimer(timer *time.Timer) {
	const debounceDuration = 100 * time.Millisecond
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(debounceDuration)
}
