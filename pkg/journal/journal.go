// Package journal implements the append-only activity journal: one JSON
// object per line in a file per local calendar day (<root>/<YYYY-MM-DD>.jsonl).
//
// A Journal is the single writer for its root. Log serializes every append
// behind one mutex so concurrent callers (the tick loop, harvest tasks, the
// file watcher) each produce exactly one complete line.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Mirror receives every entry after it was appended to the day file.
// Mirror failures are reported and never fail the append.
type Mirror interface {
	Record(ctx context.Context, e Entry) error
}

// Option configures a Journal.
type Option func(*Journal)

// WithConsole mirrors each entry to w as "[timestamp] [TYPE] content".
// styled enables colored type tags.
func WithConsole(w io.Writer, styled bool) Option {
	return func(j *Journal) {
		j.console = w
		j.styled = styled
	}
}

// WithMirror adds a secondary sink.
func WithMirror(m Mirror) Option {
	return func(j *Journal) { j.mirrors = append(j.mirrors, m) }
}

// WithFsync forces an fsync after every append.
func WithFsync(enabled bool) Option {
	return func(j *Journal) { j.fsync = enabled }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// Journal appends entries to date-partitioned JSONL files.
type Journal struct {
	root    string
	console io.Writer
	styled  bool
	mirrors []Mirror
	fsync   bool
	now     func() time.Time

	mu   sync.Mutex
	f    *os.File
	date string // date of the open file
}

// New creates a Journal rooted at root. The directory and day file are
// created on first Log.
func New(root string, opts ...Option) *Journal {
	j := &Journal{root: root, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Root returns the journal directory.
func (j *Journal) Root() string { return j.root }

// DayFile returns the journal file path for the local date of t.
func DayFile(root string, t time.Time) string {
	return filepath.Join(root, t.Format(DateLayout)+".jsonl")
}

// TodayFile returns the path of the current day's file. No I/O.
func (j *Journal) TodayFile() string {
	return DayFile(j.root, j.now())
}

// Log timestamps and appends one entry, then mirrors it to the console and
// secondary sinks. Append failures are reported via slog and returned; the
// caller is free to ignore them.
func (j *Journal) Log(typ Type, content string, ctx map[string]string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	e := Entry{
		Timestamp: j.now().Truncate(time.Second),
		Type:      typ,
		Content:   content,
		Context:   maps.Clone(ctx),
	}
	if e.Context == nil {
		e.Context = map[string]string{}
	}

	j.echo(e)

	if err := j.append(e); err != nil {
		slog.Error("journal append failed", "type", typ, "error", err)
		return err
	}

	for _, m := range j.mirrors {
		if err := m.Record(context.Background(), e); err != nil {
			slog.Warn("journal mirror failed", "type", typ, "error", err)
		}
	}
	return nil
}

// append writes e as one line to its day file. Caller holds j.mu.
func (j *Journal) append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("journal: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := j.openFor(e.Timestamp); err != nil {
		return err
	}
	if _, err := j.f.Write(data); err != nil {
		return fmt.Errorf("journal: write %s: %w", j.f.Name(), err)
	}
	if j.fsync {
		if err := j.f.Sync(); err != nil {
			return fmt.Errorf("journal: sync %s: %w", j.f.Name(), err)
		}
	}
	return nil
}

// openFor makes sure the open file matches the date of t, rolling over at
// midnight. Caller holds j.mu.
func (j *Journal) openFor(t time.Time) error {
	date := t.Format(DateLayout)
	if j.f != nil && j.date == date {
		return nil
	}
	if j.f != nil {
		_ = j.f.Close()
		j.f = nil
	}
	if err := os.MkdirAll(j.root, 0o755); err != nil {
		return fmt.Errorf("journal: create root %s: %w", j.root, err)
	}
	path := DayFile(j.root, t)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // path built from configured root
	if err != nil {
		return fmt.Errorf("journal: open %s: %w", path, err)
	}
	j.f = f
	j.date = date
	return nil
}

// Close closes the open day file. Further Log calls reopen it.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	j.date = ""
	return err
}
