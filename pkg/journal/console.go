package journal

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var typeColors = map[Type]lipgloss.Color{ //nolint:gochecknoglobals // static palette
	Focus:    lipgloss.Color("12"),
	Watching: lipgloss.Color("13"),
	Idle:     lipgloss.Color("240"),
	WiFi:     lipgloss.Color("14"),
	FileMod:  lipgloss.Color("11"),
	Harvest:  lipgloss.Color("10"),
	Progress: lipgloss.Color("10"),
}

// TypeStyle returns the display style used for an entry type.
func TypeStyle(t Type) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c, ok := typeColors[t]; ok {
		s = s.Foreground(c)
	}
	if t.Important() {
		s = s.Bold(true)
	}
	return s
}

// FormatLine renders an entry the way the console mirror prints it.
func FormatLine(e Entry, styled bool) string {
	tag := "[" + string(e.Type) + "]"
	if styled {
		tag = TypeStyle(e.Type).Render(tag)
	}
	return fmt.Sprintf("[%s] %s %s", e.Timestamp.Format(TimestampLayout), tag, e.Content)
}

// echo writes the console mirror line. Caller holds j.mu.
func (j *Journal) echo(e Entry) {
	if j.console == nil {
		return
	}
	fmt.Fprintln(j.console, FormatLine(e, j.styled))
}
