package eventlog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"omnijournal/pkg/eventlog"
	"omnijournal/pkg/journal"
)

func openTestIndex(t *testing.T) *eventlog.Index {
	t.Helper()
	idx, err := eventlog.Open(filepath.Join(t.TempDir(), "sub", "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func at(h, m, s int) time.Time {
	return time.Date(2026, 5, 4, h, m, s, 0, time.Local)
}

func seed(t *testing.T, idx *eventlog.Index) {
	t.Helper()
	entries := []journal.Entry{
		{Timestamp: at(9, 0, 0), Type: journal.Focus, Content: "[VSCode] main.go", Context: map[string]string{"wifi": "Lab", "category": "CODING"}},
		{Timestamp: at(9, 0, 30), Type: journal.Progress, Content: "Analyzed [VSCode] main.go: refactoring parser"},
		{Timestamp: at(9, 5, 0), Type: journal.Idle, Content: "User is away (Idle > 1 mins)"},
		{Timestamp: at(9, 10, 0), Type: journal.Idle, Content: "User is active again"},
		{Timestamp: time.Date(2026, 5, 5, 8, 0, 0, 0, time.Local), Type: journal.WiFi, Content: "Location changed: Home"},
	}
	for _, e := range entries {
		if err := idx.Record(context.Background(), e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
}

func TestOpen_WALModeEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := eventlog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	if err := idx.Record(context.Background(), journal.Entry{Timestamp: at(1, 0, 0), Type: journal.Focus, Content: "x"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := os.Stat(path + "-wal"); err != nil {
		t.Errorf("expected WAL file while open: %v", err)
	}
}

func TestQuery_AllChronological(t *testing.T) {
	idx := openTestIndex(t)
	seed(t, idx)

	got, err := idx.Query(context.Background(), eventlog.QueryOpts{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("entries out of order at %d", i)
		}
	}
	if got[0].Context["category"] != "CODING" {
		t.Errorf("context not round-tripped: %v", got[0].Context)
	}
	if got[1].Context == nil {
		t.Error("empty context should decode as empty map")
	}
}

func TestQuery_Filters(t *testing.T) {
	idx := openTestIndex(t)
	seed(t, idx)
	after := at(9, 1, 0)

	tests := []struct {
		name string
		opts eventlog.QueryOpts
		want int
	}{
		{"type", eventlog.QueryOpts{Type: journal.Idle}, 2},
		{"day", eventlog.QueryOpts{Day: "2026-05-05"}, 1},
		{"after", eventlog.QueryOpts{After: &after}, 3},
		{"before", eventlog.QueryOpts{Before: &after}, 2},
		{"contains", eventlog.QueryOpts{Contains: "PARSER"}, 1},
		{"type and day", eventlog.QueryOpts{Type: journal.Idle, Day: "2026-05-05"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Query(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}
}

func TestQuery_LimitKeepsNewest(t *testing.T) {
	idx := openTestIndex(t)
	seed(t, idx)

	got, err := idx.Query(context.Background(), eventlog.QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Content != "User is active again" || got[1].Type != journal.WiFi {
		t.Errorf("unexpected tail: %+v", got)
	}
}

func TestReindex_RebuildsFromDayFiles(t *testing.T) {
	root := t.TempDir()
	clock := at(9, 0, 0)
	j := journal.New(root, journal.WithClock(func() time.Time { return clock }))
	_ = j.Log(journal.Focus, "[Zotero] paper.pdf", nil)
	_ = j.Log(journal.Harvest, "Analyzed [Zotero] paper.pdf: attention", nil)
	_ = j.Close()

	// A corrupt line and an unrelated file.
	f, err := os.OpenFile(journal.DayFile(root, clock), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{broken\n")
	_ = f.Close()
	_ = os.WriteFile(filepath.Join(root, "notes.jsonl"), []byte("{}\n"), 0o644)

	idx := openTestIndex(t)
	seed(t, idx)

	stats, err := idx.Reindex(context.Background(), root)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if stats.Files != 1 || stats.Entries != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}

	got, err := idx.Query(context.Background(), eventlog.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("index should only hold reindexed entries, got %d", len(got))
	}
}

func TestOpenReader_MissingDB(t *testing.T) {
	idx, err := eventlog.OpenReader(filepath.Join(t.TempDir(), "nope.db"))
	if err == nil {
		_ = idx.Close()
		t.Fatal("expected error for missing database")
	}
}

func TestOpenReader_SeesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	w, err := eventlog.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	seed(t, w)

	r, err := eventlog.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	got, err := r.Query(context.Background(), eventlog.QueryOpts{Type: journal.Focus})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 focus entry, got %d", len(got))
	}
}

func TestJournalMirror(t *testing.T) {
	idx := openTestIndex(t)
	j := journal.New(t.TempDir(), journal.WithMirror(idx))
	defer j.Close()

	if err := j.Log(journal.FileMod, "Modified: draft.md", map[string]string{"wifi": "Lab"}); err != nil {
		t.Fatal(err)
	}
	got, err := idx.Query(context.Background(), eventlog.QueryOpts{Type: journal.FileMod})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Context["wifi"] != "Lab" {
		t.Fatalf("mirror entry missing: %+v", got)
	}
}
