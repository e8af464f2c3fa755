package main

import (
	"fmt"
	"strings"
	"time"

	"omnijournal/pkg/journal"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

// chromeHeight is the number of rows used by the status bar and footer.
const chromeHeight = 3

// Model is the Bubble Tea model for the journal dashboard.
type Model struct {
	root    string
	pidPath string
	now     func() time.Time

	// Displayed day. followToday moves it forward across midnight.
	day         time.Time
	followToday bool

	entries []journal.Entry
	skipped int
	counts  map[journal.Type]int
	filter  journal.Type
	err     error

	recorderRunning bool
	recorderPID     int

	showHelp bool
	width    int
	height   int
	ready    bool
	viewport viewport.Model

	watcher *fsnotify.Watcher
}

// newModel creates a Model showing today's journal under root.
func newModel(root, pidPath string) Model {
	now := time.Now
	return Model{
		root:        root,
		pidPath:     pidPath,
		now:         now,
		day:         now(),
		followToday: true,
		counts:      map[journal.Type]int{},
		watcher:     initWatcher(root),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadDayCmd(m.root, m.day),
		recorderStatusCmd(m.pidPath),
		tickCmd(),
		waitForChange(m.watcher),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(msg.Height-chromeHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m = m.refreshContent(true)

	case entriesMsg:
		if msg.day != m.day.Format(journal.DateLayout) {
			return m, nil
		}
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.skipped = msg.skipped
			m.counts = countByType(msg.entries)
		}
		m = m.refreshContent(m.atBottom())

	case recorderMsg:
		m.recorderRunning = msg.running
		m.recorderPID = msg.pid

	case tickMsg:
		if m.followToday {
			m.day = m.now()
		}
		return m, tea.Batch(loadDayCmd(m.root, m.day), recorderStatusCmd(m.pidPath), tickCmd())

	case fsChangeMsg:
		return m, tea.Batch(loadDayCmd(m.root, m.day), waitForChange(m.watcher))
	}

	return m, nil
}

// handleKeyPress processes keyboard input and returns updated model with optional command.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.watcher != nil {
			_ = m.watcher.Close()
		}
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "t", "tab":
		m.filter = nextFilter(m.filter)
		m = m.refreshContent(true)
	case "a":
		m.filter = ""
		m = m.refreshContent(true)
	case "g":
		m.viewport.GotoTop()
	case "G":
		m.viewport.GotoBottom()
	case "[":
		return m.showDay(m.day.AddDate(0, 0, -1))
	case "]":
		next := m.day.AddDate(0, 0, 1)
		if next.After(m.now()) {
			return m, nil
		}
		return m.showDay(next)
	case "T":
		return m.showDay(m.now())
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// showDay switches the displayed day and loads it.
func (m Model) showDay(day time.Time) (tea.Model, tea.Cmd) {
	m.day = day
	m.followToday = day.Format(journal.DateLayout) == m.now().Format(journal.DateLayout)
	m.entries = nil
	m.skipped = 0
	m.counts = map[journal.Type]int{}
	m = m.refreshContent(true)
	return m, loadDayCmd(m.root, day)
}

func (m Model) atBottom() bool {
	return !m.ready || m.viewport.AtBottom()
}

// refreshContent re-renders the entry list into the viewport.
func (m Model) refreshContent(toBottom bool) Model {
	if !m.ready {
		return m
	}
	m.viewport.SetContent(m.renderEntries())
	if toBottom {
		m.viewport.GotoBottom()
	}
	return m
}

// visible returns the entries passing the type filter.
func (m Model) visible() []journal.Entry {
	if m.filter == "" {
		return m.entries
	}
	var out []journal.Entry
	for _, e := range m.entries {
		if e.Type == m.filter {
			out = append(out, e)
		}
	}
	return out
}

// nextFilter cycles through all types and back to no filter.
func nextFilter(cur journal.Type) journal.Type {
	types := journal.AllTypes()
	if cur == "" {
		return types[0]
	}
	for i, t := range types {
		if t == cur && i+1 < len(types) {
			return types[i+1]
		}
	}
	return ""
}

func countByType(entries []journal.Entry) map[journal.Type]int {
	counts := make(map[journal.Type]int, len(journal.AllTypes()))
	for _, e := range entries {
		counts[e.Type]++
	}
	return counts
}

// View implements tea.Model.
func (m Model) View() string {
	theme := DefaultTheme()
	statusBar := m.renderStatusBar(theme)

	if m.showHelp {
		return statusBar + "\n" + renderHelp(theme)
	}
	if !m.ready {
		return statusBar + "\nLoading..."
	}
	return statusBar + "\n" + m.viewport.View() + "\n" + m.renderFooter(theme)
}

// renderEntries renders the visible entries one per line.
func (m Model) renderEntries() string {
	theme := DefaultTheme()
	muted := lipgloss.NewStyle().Foreground(theme.Muted)

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(theme.Error).Render("Error: " + m.err.Error())
	}
	entries := m.visible()
	if len(entries) == 0 {
		if m.filter != "" {
			return muted.Render(fmt.Sprintf("No %s entries for %s", m.filter, m.day.Format(journal.DateLayout)))
		}
		return muted.Render("No entries for " + m.day.Format(journal.DateLayout))
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = journal.FormatLine(e, true)
	}
	return strings.Join(lines, "\n")
}

// renderStatusBar renders recorder health, the day and per-type counts.
func (m Model) renderStatusBar(theme Theme) string {
	var recorder string
	if m.recorderRunning {
		recorder = lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("recorder: running (%d)", m.recorderPID))
	} else {
		recorder = lipgloss.NewStyle().Foreground(theme.Error).Render("recorder: stopped")
	}

	parts := []string{
		recorder,
		" | Day: ",
		lipgloss.NewStyle().Foreground(theme.Primary).Render(m.day.Format(journal.DateLayout)),
		" | Entries: ",
		lipgloss.NewStyle().Foreground(theme.Warning).Render(fmt.Sprintf("%d", len(m.entries))),
	}
	for _, t := range journal.AllTypes() {
		if n := m.counts[t]; n > 0 {
			parts = append(parts, " ", journal.TypeStyle(t).Render(fmt.Sprintf("%s %d", t, n)))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

// renderFooter renders the filter state and a key hint.
func (m Model) renderFooter(theme Theme) string {
	muted := lipgloss.NewStyle().Foreground(theme.Muted)
	filter := "all"
	if m.filter != "" {
		filter = string(m.filter)
	}
	footer := fmt.Sprintf("filter: %s", filter)
	if m.skipped > 0 {
		footer += fmt.Sprintf(" | %d malformed lines skipped", m.skipped)
	}
	return muted.Render(footer + " | ? help | q quit")
}
