// Package summary compiles a day's journal into a narrative markdown report
// with a text-generation model.
package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"omnijournal/pkg/journal"
)

// Generator produces text from a system instruction and user content.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// ErrNoEntries is returned when the requested day has no journal entries.
var ErrNoEntries = errors.New("summary: no journal entries for date")

// DefaultBudget is the number of characters of digest sent to the model.
const DefaultBudget = 6000

// SystemPrompt is the fixed instruction describing the report layout.
const SystemPrompt = "You are an omniscient personal assistant. Analyze the user's raw activity logs to reconstruct their day.\n" +
	"Key Instructions:\n" +
	"1. Use [PROGRESS] tags to describe technical work details (e.g., specific code functions, research paper topics).\n" +
	"2. Use [HARVEST] tags to summarize knowledge gained from passive media consumption.\n" +
	"3. Use [FOCUS] tags to determine the timeline and app usage.\n\n" +
	"Output Format (Markdown):\n" +
	"## Daily Achievements\n" +
	"### Deep Work & Progress\n" +
	"- (Synthesize technical/work details here)\n" +
	"### Knowledge Inputs\n" +
	"- (Synthesize learnings from videos/reading here)\n" +
	"### Timeline & Context\n" +
	"- (Overview of time distribution and location changes)"

// BuildDigest renders entries as the model input: harvest results marked
// important, everything else with its timestamp and type.
func BuildDigest(entries []journal.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		switch {
		case e.Type.Important():
			fmt.Fprintf(&b, "IMPORTANT: [%s] %s\n", e.Type, e.Content)
		default:
			fmt.Fprintf(&b, "[%s] %s: %s\n", e.Timestamp.Format(journal.TimestampLayout), e.Type, e.Content)
		}
	}
	return b.String()
}

// Tail returns the last budget characters of s. A non-positive budget
// returns s unchanged.
func Tail(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	n := utf8.RuneCountInString(s)
	if n <= budget {
		return s
	}
	skip := n - budget
	for i := range s {
		if skip == 0 {
			return s[i:]
		}
		skip--
	}
	return ""
}

// ArtifactPath returns the summary file for the local date of t.
func ArtifactPath(root string, t time.Time) string {
	return filepath.Join(root, "Summary_"+t.Format(journal.DateLayout)+".md")
}

// Result describes one compiled summary.
type Result struct {
	Date       string
	Path       string
	Entries    int
	Skipped    int
	InputChars int
	Text       string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithBudget sets the digest character budget.
func WithBudget(n int) Option {
	return func(c *Compiler) { c.budget = n }
}

// WithOutput echoes the generated summary to w.
func WithOutput(w io.Writer) Option {
	return func(c *Compiler) { c.out = w }
}

// Compiler reads day files under a journal root and writes summaries next to
// them.
type Compiler struct {
	root   string
	gen    Generator
	budget int
	out    io.Writer
}

// NewCompiler creates a Compiler for the journal at root.
func NewCompiler(root string, gen Generator, opts ...Option) *Compiler {
	c := &Compiler{root: root, gen: gen, budget: DefaultBudget}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile summarizes the day containing date. On generator failure no
// artifact is written.
func (c *Compiler) Compile(ctx context.Context, date time.Time) (Result, error) {
	res := Result{Date: date.Format(journal.DateLayout)}

	entries, skipped, err := journal.ReadDay(journal.DayFile(c.root, date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, fmt.Errorf("%w %s", ErrNoEntries, res.Date)
		}
		return res, fmt.Errorf("summary: %w", err)
	}
	res.Entries, res.Skipped = len(entries), skipped
	if len(entries) == 0 {
		return res, fmt.Errorf("%w %s", ErrNoEntries, res.Date)
	}

	input := Tail(BuildDigest(entries), c.budget)
	res.InputChars = utf8.RuneCountInString(input)

	text, err := c.gen.Generate(ctx, SystemPrompt, input)
	if err != nil {
		return res, fmt.Errorf("summary: generate: %w", err)
	}
	res.Text = text

	res.Path = ArtifactPath(c.root, date)
	if err := os.MkdirAll(c.root, 0o755); err != nil {
		return res, fmt.Errorf("summary: create %s: %w", c.root, err)
	}
	if err := os.WriteFile(res.Path, []byte(text), 0o644); err != nil { //nolint:gosec // user-readable report
		return res, fmt.Errorf("summary: write %s: %w", res.Path, err)
	}

	if c.out != nil {
		rule := strings.Repeat("-", 50)
		fmt.Fprintf(c.out, "%s\n%s\n%s\n", rule, text, rule)
	}
	return res, nil
}
