package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// executeCommand runs the root command with the given args and returns stdout, stderr, and error.
func executeCommand(args ...string) (stdout string, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// isolate points every omnijournal path at a fresh temp dir and returns the
// journal root.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("OMNIJOURNAL_HOME", filepath.Join(dir, "home"))
	t.Setenv("OMNIJOURNAL_PID_PATH", "")
	t.Setenv("OMNIJOURNAL_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("OMNIJOURNAL_LOG_ROOT", filepath.Join(dir, "journal"))
	t.Setenv("OMNIJOURNAL_MONITOR_PATH", filepath.Join(dir, "research"))
	t.Setenv("OMNIJOURNAL_LOG_LEVEL", "error")
	return filepath.Join(dir, "journal")
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestCLICommands(t *testing.T) {
	t.Run("root --help shows usage", func(t *testing.T) {
		out, _, err := executeCommand("--help")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !containsAll(out, "omnijournal", "run", "stop", "status", "summary", "logs", "reindex", "classify", "config") {
			t.Errorf("expected root help to list all subcommands, got:\n%s", out)
		}
	})

	t.Run("root --version prints version", func(t *testing.T) {
		out, _, err := executeCommand("--version")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(out, "omnijournal ") {
			t.Errorf("expected version output to start with 'omnijournal', got: %s", out)
		}
	})

	t.Run("logs --help shows flags", func(t *testing.T) {
		out, _, err := executeCommand("logs", "--help")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !containsAll(out, "--tail", "--follow", "--type", "--date", "--grep") {
			t.Errorf("expected logs help to show filters, got:\n%s", out)
		}
	})

	t.Run("classify requires an app", func(t *testing.T) {
		isolate(t)
		if _, _, err := executeCommand("classify"); err == nil {
			t.Fatal("expected error without arguments")
		}
	})
}

func TestClassifyCommand(t *testing.T) {
	isolate(t)

	tests := []struct {
		args []string
		want string
		work string
	}{
		{[]string{"classify", "Code", "main.go"}, "category: CODING", "work:     true"},
		{[]string{"classify", "Zotero"}, "category: PAPER_READING", "work:     true"},
		{[]string{"classify", "Safari", "YouTube", "lecture"}, "category: MEDIA", "work:     false"},
		{[]string{"classify", "Finder"}, "category: GENERAL", "work:     false"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[1:], " "), func(t *testing.T) {
			out, _, err := executeCommand(tt.args...)
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if !containsAll(out, tt.want, tt.work, "prompt:") {
				t.Errorf("output = %q, want %q and %q", out, tt.want, tt.work)
			}
		})
	}
}
