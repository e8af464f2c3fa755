// Package main implements the omnijournal-dash live journal viewer.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"omnijournal/pkg/config"

	tea "github.com/charmbracelet/bubbletea"
)

// resolveSettings returns the journal root and recorder PID path using the
// same config file and environment overrides as the omnijournal CLI.
func resolveSettings() (root, pidPath string, err error) {
	home := os.Getenv("OMNIJOURNAL_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("get home dir: %w", err)
		}
		home = filepath.Join(userHome, ".omnijournal")
	}

	cfgPath := os.Getenv("OMNIJOURNAL_CONFIG")
	if cfgPath == "" {
		cfgPath = filepath.Join(home, "config.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", "", err
	}

	pidPath = os.Getenv("OMNIJOURNAL_PID_PATH")
	if pidPath == "" {
		pidPath = filepath.Join(home, "omnijournal.pid")
	}
	return cfg.LogRoot, pidPath, nil
}

func main() {
	root, pidPath, err := resolveSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "omnijournal-dash: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(root, pidPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
