package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStop_NotRunning(t *testing.T) {
	isolate(t)
	out, _, err := executeCommand("stop")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !strings.Contains(out, "not running") {
		t.Errorf("output = %q, want 'not running'", out)
	}
}

func TestStop_RemovesStalePIDFile(t *testing.T) {
	isolate(t)
	pidFile := filepath.Join(t.TempDir(), "stale.pid")
	t.Setenv("OMNIJOURNAL_PID_PATH", pidFile)
	if err := WritePIDFile(pidFile, deadPID); err != nil {
		t.Fatalf("setup: %v", err)
	}

	out, _, err := executeCommand("stop")
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !strings.Contains(out, "stale PID file") {
		t.Errorf("output = %q, want stale notice", out)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Errorf("stale PID file not removed: %v", err)
	}
}

func TestStatus_Stopped(t *testing.T) {
	isolate(t)
	out, _, err := executeCommand("status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !containsAll(out, "recorder: stopped", "no entries yet", "not written yet") {
		t.Errorf("status output:\n%s", out)
	}
}
