package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Type identifies the kind of journal entry.
type Type string

// Entry types.
const (
	Focus    Type = "FOCUS"
	Watching Type = "WATCHING"
	Idle     Type = "IDLE"
	WiFi     Type = "WIFI"
	FileMod  Type = "FILE_MOD"
	Harvest  Type = "HARVEST"
	Progress Type = "PROGRESS"
)

// AllTypes lists every entry type in display order.
func AllTypes() []Type {
	return []Type{Focus, Watching, Idle, WiFi, FileMod, Harvest, Progress}
}

// Valid reports whether t is a known entry type.
func (t Type) Valid() bool {
	switch t {
	case Focus, Watching, Idle, WiFi, FileMod, Harvest, Progress:
		return true
	default:
		return false
	}
}

// Important reports whether entries of this type carry model-derived
// content (harvest results).
func (t Type) Important() bool {
	return t == Harvest || t == Progress
}

// Layouts used on disk. Timestamps are local time with second precision.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Entry is one immutable journal record.
type Entry struct {
	Timestamp time.Time
	Type      Type
	Content   string
	Context   map[string]string
}

// wireEntry is the JSON line layout.
type wireEntry struct {
	Timestamp string            `json:"timestamp"`
	Type      Type              `json:"type"`
	Content   string            `json:"content"`
	Context   map[string]string `json:"context"`
}

// MarshalJSON encodes the entry as a journal line object. A nil context is
// written as an empty object.
func (e Entry) MarshalJSON() ([]byte, error) {
	ctx := e.Context
	if ctx == nil {
		ctx = map[string]string{}
	}
	return json.Marshal(wireEntry{
		Timestamp: e.Timestamp.Format(TimestampLayout),
		Type:      e.Type,
		Content:   e.Content,
		Context:   ctx,
	})
}

// ErrMalformed is returned for lines that are not well-formed entries.
var ErrMalformed = errors.New("journal: malformed entry")

// UnmarshalJSON decodes a journal line object, rejecting unknown types and
// unparseable timestamps.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !w.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrMalformed, w.Type)
	}
	ts, err := time.ParseInLocation(TimestampLayout, w.Timestamp, time.Local)
	if err != nil {
		return fmt.Errorf("%w: timestamp: %w", ErrMalformed, err)
	}
	if w.Context == nil {
		w.Context = map[string]string{}
	}
	*e = Entry{Timestamp: ts, Type: w.Type, Content: w.Content, Context: w.Context}
	return nil
}

// ParseLine decodes one journal line.
func ParseLine(line []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(line, &e); err != nil {
		if errors.Is(err, ErrMalformed) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return e, nil
}
