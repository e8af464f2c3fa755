// Package watch turns file modifications under a monitored directory into
// FILE_MOD journal entries.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"omnijournal/pkg/journal"
)

// DefaultIgnoreSuffixes are file name endings that never produce entries.
var DefaultIgnoreSuffixes = []string{".DS_Store", ".json", ".tmp", ".log"} //nolint:gochecknoglobals // read-only defaults

// DefaultDebounce collapses bursts of events on one path.
const DefaultDebounce = 500 * time.Millisecond

// Sink receives FILE_MOD entries. *journal.Journal satisfies it.
type Sink interface {
	Log(typ journal.Type, content string, ctx map[string]string) error
}

// Network reports the current SSID for entry context. sensor.Port
// satisfies it.
type Network interface {
	WiFiSSID(ctx context.Context) string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnoreSuffixes replaces the ignored suffix list.
func WithIgnoreSuffixes(s []string) Option {
	return func(w *Watcher) { w.ignore = append([]string(nil), s...) }
}

// WithDebounce sets the per-path debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// Watcher watches a directory tree recursively.
type Watcher struct {
	root     string
	sink     Sink
	net      Network
	ignore   []string
	debounce time.Duration
	now      func() time.Time

	fsw *fsnotify.Watcher

	mu   sync.Mutex
	last map[string]time.Time
}

// New watches root and every directory below it. It fails if root is not a
// directory.
func New(root string, sink Sink, net Network, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		sink:     sink,
		net:      net,
		ignore:   DefaultIgnoreSuffixes,
		debounce: DefaultDebounce,
		now:      time.Now,
		fsw:      fsw,
		last:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree adds dir and its subdirectories. Unreadable subtrees are skipped.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch: walk %s: %w", path, err)
			}
			slog.Debug("watch: skipping unreadable path", "path", path, "error", err)
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("watch: add %s: %w", path, err)
			}
			slog.Warn("watch: cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Watched returns the directories currently watched.
func (w *Watcher) Watched() []string { return w.fsw.WatchList() }

// Run handles events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				slog.Warn("watch: event queue overflow, some changes were missed")
				continue
			}
			slog.Warn("watch: watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return // already gone
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("watch: cannot watch new directory", "path", event.Name, "error", err)
			}
		}
		return
	}

	name := filepath.Base(event.Name)
	if w.ignored(name) || !w.admit(event.Name) {
		return
	}

	_ = w.sink.Log(journal.FileMod, "Modified: "+name, map[string]string{
		"wifi": w.net.WiFiSSID(ctx),
	})
}

func (w *Watcher) ignored(name string) bool {
	for _, s := range w.ignore {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// admit applies the per-path debounce.
func (w *Watcher) admit(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if prev, ok := w.last[path]; ok && now.Sub(prev) < w.debounce {
		return false
	}
	w.last[path] = now

	// Drop stale paths so the map stays small on long runs.
	if len(w.last) > 1024 {
		for p, t := range w.last {
			if now.Sub(t) >= w.debounce {
				delete(w.last, p)
			}
		}
	}
	return true
}
