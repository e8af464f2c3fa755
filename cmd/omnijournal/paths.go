package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// homeDirName is the state directory under the user's home.
const homeDirName = ".omnijournal"

// Paths holds all resolved omnijournal state file paths.
// Use ResolvePaths() to populate this struct with defaults + env overrides.
type Paths struct {
	Home       string // ~/.omnijournal or OMNIJOURNAL_HOME
	PIDPath    string // omnijournal.pid or OMNIJOURNAL_PID_PATH
	ConfigPath string // config.yaml under Home
}

// ResolvePaths returns all omnijournal paths, respecting env var overrides.
// Environment variables:
//   - OMNIJOURNAL_HOME: base directory for process state (default: ~/.omnijournal)
//   - OMNIJOURNAL_PID_PATH: recorder PID file (default: $OMNIJOURNAL_HOME/omnijournal.pid)
//
// The journal itself lives under log_root from the config, not here.
func ResolvePaths() (*Paths, error) {
	home, err := resolveHome()
	if err != nil {
		return nil, err
	}

	return &Paths{
		Home:       home,
		PIDPath:    resolvePathWithEnv("OMNIJOURNAL_PID_PATH", home, "omnijournal.pid"),
		ConfigPath: filepath.Join(home, "config.yaml"),
	}, nil
}

// resolveHome returns the state directory from OMNIJOURNAL_HOME or ~/.omnijournal.
func resolveHome() (string, error) {
	if v := os.Getenv("OMNIJOURNAL_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, homeDirName), nil
}

// resolvePathWithEnv returns the path from envKey if set, otherwise joins base + suffix.
func resolvePathWithEnv(envKey, base, suffix string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return filepath.Join(base, suffix)
}
