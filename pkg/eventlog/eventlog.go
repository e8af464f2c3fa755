// Package eventlog maintains a SQLite index of journal entries. The JSONL day
// files stay authoritative; the index is a mirror that can be rebuilt from
// them at any time with Reindex.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"omnijournal/pkg/journal"

	_ "modernc.org/sqlite" // SQLite driver
)

// SchemaDDL creates the entries table and its indexes.
const SchemaDDL = `
CREATE TABLE IF NOT EXISTS entries (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	ts      TEXT NOT NULL,
	day     TEXT NOT NULL,
	type    TEXT NOT NULL,
	content TEXT NOT NULL,
	context TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_entries_day ON entries(day);
CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type);
`

// Index is a SQLite-backed mirror of the journal.
type Index struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the index at path with WAL journaling and
// a 5-second busy timeout, and applies the schema.
func Open(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	// One writer connection; the journal already serializes appends.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(context.Background(), SchemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Index{db: db, path: path}, nil
}

// OpenReader opens an existing index read-only so a running recorder is never
// blocked by readers.
func OpenReader(path string) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index not found: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping index: %w", err)
	}
	return &Index{db: db, path: path}, nil
}

// openDB opens a SQLite database at path with WAL mode and a busy timeout.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}

	return db, nil
}

// Path returns the database file path.
func (x *Index) Path() string { return x.path }

// Close releases the database connection. Safe to call multiple times.
func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	err := x.db.Close()
	x.db = nil
	return err
}

// Record inserts one entry. It satisfies journal.Mirror.
func (x *Index) Record(ctx context.Context, e journal.Entry) error {
	return insert(ctx, x.db, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, e journal.Entry) error {
	ctxJSON := []byte("{}")
	if len(e.Context) > 0 {
		b, err := json.Marshal(e.Context)
		if err != nil {
			return fmt.Errorf("marshal context: %w", err)
		}
		ctxJSON = b
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO entries (ts, day, type, content, context) VALUES (?, ?, ?, ?, ?)`,
		e.Timestamp.Format(journal.TimestampLayout),
		e.Timestamp.Format(journal.DateLayout),
		string(e.Type), e.Content, string(ctxJSON),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// QueryOpts specifies filter criteria for querying entries.
type QueryOpts struct {
	// Type filters to one entry type.
	Type journal.Type

	// Day filters to one local date (YYYY-MM-DD).
	Day string

	// After filters entries at or after this time.
	After *time.Time

	// Before filters entries at or before this time.
	Before *time.Time

	// Contains filters on a case-insensitive substring of content.
	Contains string

	// Limit restricts the number of results (0 = no limit). With a limit the
	// newest matching entries are kept.
	Limit int
}

// Query returns matching entries in chronological order.
func (x *Index) Query(ctx context.Context, opts QueryOpts) ([]journal.Entry, error) {
	query, args := buildQuery(opts)

	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var ts, typ, content, ctxJSON string
		if err := rows.Scan(&ts, &typ, &content, &ctxJSON); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		t, err := time.ParseInLocation(journal.TimestampLayout, ts, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse ts: %w", err)
		}
		e := journal.Entry{Timestamp: t, Type: journal.Type(typ), Content: content, Context: map[string]string{}}
		if err := json.Unmarshal([]byte(ctxJSON), &e.Context); err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	// Rows come back newest first so LIMIT keeps the tail.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// buildQuery constructs the SQL query and arguments from QueryOpts.
func buildQuery(opts QueryOpts) (string, []any) {
	var conditions []string
	var args []any

	query := "SELECT ts, type, content, context FROM entries WHERE 1=1"

	if opts.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(opts.Type))
	}
	if opts.Day != "" {
		conditions = append(conditions, "day = ?")
		args = append(args, opts.Day)
	}
	if opts.After != nil {
		conditions = append(conditions, "ts >= ?")
		args = append(args, opts.After.Format(journal.TimestampLayout))
	}
	if opts.Before != nil {
		conditions = append(conditions, "ts <= ?")
		args = append(args, opts.Before.Format(journal.TimestampLayout))
	}
	if opts.Contains != "" {
		conditions = append(conditions, "LOWER(content) LIKE ?")
		args = append(args, "%"+strings.ToLower(opts.Contains)+"%")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY ts DESC, id DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return query, args
}

// ReindexStats reports what Reindex did.
type ReindexStats struct {
	Files   int
	Entries int
	Skipped int
}

// Reindex replaces the index contents with every entry found in the day
// files under root. Malformed lines are counted and skipped.
func (x *Index) Reindex(ctx context.Context, root string) (ReindexStats, error) {
	var stats ReindexStats

	files, err := DayFiles(root)
	if err != nil {
		return stats, err
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin reindex: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return stats, fmt.Errorf("clear entries: %w", err)
	}

	for _, path := range files {
		entries, skipped, err := journal.ReadDay(path)
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.Skipped += skipped
		for _, e := range entries {
			if err := insert(ctx, tx, e); err != nil {
				return stats, err
			}
			stats.Entries++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit reindex: %w", err)
	}
	return stats, nil
}

// DayFiles lists the journal day files under root in date order.
func DayFiles(root string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("list day files: %w", err)
	}
	var files []string
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".jsonl")
		if _, err := time.Parse(journal.DateLayout, name); err != nil {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}
