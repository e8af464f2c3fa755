package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpBinding represents a key binding with its description.
type helpBinding struct {
	key  string
	desc string
}

func helpBindings() []helpBinding {
	return []helpBinding{
		{"j/k or ↑/↓", "Scroll"},
		{"g/G", "Jump to top or bottom"},
		{"t/tab", "Cycle entry type filter"},
		{"a", "Show all types"},
		{"[ / ]", "Previous or next day"},
		{"T", "Back to today"},
		{"?", "Toggle help"},
		{"q or ctrl+c", "Quit"},
	}
}

// renderHelp renders the help overlay.
func renderHelp(theme Theme) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Width(16)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Padding(1, 0).Render("Keys"))
	b.WriteString("\n")
	for _, h := range helpBindings() {
		b.WriteString(keyStyle.Render(h.key))
		b.WriteString(descStyle.Render(h.desc))
		b.WriteString("\n")
	}
	return b.String()
}
