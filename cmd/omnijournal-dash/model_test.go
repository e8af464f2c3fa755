package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"omnijournal/pkg/journal"

	tea "github.com/charmbracelet/bubbletea"
)

var testDay = time.Date(2026, 5, 4, 12, 0, 0, 0, time.Local)

func testModel(t *testing.T) Model {
	t.Helper()
	m := newModel(t.TempDir(), filepath.Join(t.TempDir(), "none.pid"))
	m.now = func() time.Time { return testDay }
	m.day = testDay
	if m.watcher != nil {
		t.Cleanup(func() { _ = m.watcher.Close() })
	}
	return m
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	return updated.(Model)
}

func sampleEntries() []journal.Entry {
	at := func(min int) time.Time { return testDay.Add(time.Duration(min) * time.Minute) }
	return []journal.Entry{
		{Timestamp: at(0), Type: journal.Focus, Content: "[Code] model.go"},
		{Timestamp: at(1), Type: journal.WiFi, Content: "Location changed: Lab"},
		{Timestamp: at(2), Type: journal.Focus, Content: "[Zotero] paper.pdf"},
		{Timestamp: at(3), Type: journal.Harvest, Content: "Analyzed Zotero: attention"},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDashModel_Init(t *testing.T) {
	m := testModel(t)
	if !m.followToday {
		t.Error("expected new model to follow today")
	}
	if cmd := m.Init(); cmd == nil {
		t.Error("expected Init() to return commands, got nil")
	}
}

func TestUpdate_EntriesMsgCountsTypes(t *testing.T) {
	m := sized(t, testModel(t))

	updated, _ := m.Update(entriesMsg{day: "2026-05-04", entries: sampleEntries(), skipped: 2})
	m = updated.(Model)

	if got := m.counts[journal.Focus]; got != 2 {
		t.Errorf("FOCUS count = %d, want 2", got)
	}
	if got := m.counts[journal.Harvest]; got != 1 {
		t.Errorf("HARVEST count = %d, want 1", got)
	}
	view := m.View()
	if !containsAll(view, "Entries: ", "FOCUS 2", "[Code] model.go", "2 malformed lines skipped") {
		t.Errorf("view missing content:\n%s", view)
	}
}

func TestUpdate_IgnoresStaleDay(t *testing.T) {
	m := sized(t, testModel(t))
	updated, _ := m.Update(entriesMsg{day: "2026-05-03", entries: sampleEntries()})
	m = updated.(Model)
	if len(m.entries) != 0 {
		t.Errorf("stale day applied: %d entries", len(m.entries))
	}
}

func TestFilterCycle(t *testing.T) {
	types := journal.AllTypes()
	got := journal.Type("")
	for i := range types {
		got = nextFilter(got)
		if got != types[i] {
			t.Fatalf("step %d: filter = %q, want %q", i, got, types[i])
		}
	}
	if got = nextFilter(got); got != "" {
		t.Errorf("after last type filter = %q, want none", got)
	}
}

func TestKeys_FilterHidesOtherTypes(t *testing.T) {
	m := sized(t, testModel(t))
	updated, _ := m.Update(entriesMsg{day: "2026-05-04", entries: sampleEntries()})
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("t"))
	m = updated.(Model)
	if m.filter != journal.AllTypes()[0] {
		t.Fatalf("filter = %q", m.filter)
	}
	if n := len(m.visible()); n != 2 {
		t.Errorf("visible = %d, want 2 FOCUS entries", n)
	}

	updated, _ = m.Update(keyMsg("a"))
	m = updated.(Model)
	if m.filter != "" || len(m.visible()) != 4 {
		t.Errorf("after 'a': filter = %q visible = %d", m.filter, len(m.visible()))
	}
}

func TestKeys_DayNavigation(t *testing.T) {
	m := sized(t, testModel(t))

	updated, cmd := m.Update(keyMsg("["))
	m = updated.(Model)
	if m.day.Format(journal.DateLayout) != "2026-05-03" || m.followToday {
		t.Fatalf("after '[': day = %s follow = %t", m.day.Format(journal.DateLayout), m.followToday)
	}
	if cmd == nil {
		t.Error("expected load command after day change")
	}

	updated, _ = m.Update(keyMsg("]"))
	m = updated.(Model)
	if m.day.Format(journal.DateLayout) != "2026-05-04" || !m.followToday {
		t.Errorf("after ']': day = %s follow = %t", m.day.Format(journal.DateLayout), m.followToday)
	}

	updated, cmd = m.Update(keyMsg("]"))
	m = updated.(Model)
	if m.day.Format(journal.DateLayout) != "2026-05-04" || cmd != nil {
		t.Error("moved past today")
	}
}

func TestKeys_HelpAndQuit(t *testing.T) {
	m := sized(t, testModel(t))
	updated, _ := m.Update(keyMsg("?"))
	m = updated.(Model)
	if !strings.Contains(m.View(), "Cycle entry type filter") {
		t.Error("help not shown")
	}

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestStatusBar(t *testing.T) {
	m := testModel(t)
	if bar := m.renderStatusBar(DefaultTheme()); !strings.Contains(bar, "recorder: stopped") {
		t.Errorf("status bar = %q", bar)
	}
	m.recorderRunning = true
	m.recorderPID = 4242
	if bar := m.renderStatusBar(DefaultTheme()); !containsAll(bar, "running", "4242", "2026-05-04") {
		t.Errorf("status bar = %q", bar)
	}
}

func TestView_EmptyDay(t *testing.T) {
	m := sized(t, testModel(t))
	if !strings.Contains(m.View(), "No entries for 2026-05-04") {
		t.Errorf("view:\n%s", m.View())
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
