package claudecli

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

func TestBuildCmd_Args(t *testing.T) {
	g := &Generator{Model: "sonnet"}
	cmd := g.BuildCmd(context.Background(), "sys", "logs")

	want := []string{"claude", "-p", "logs", "--system-prompt", "sys", "--model", "sonnet"}
	if !slices.Equal(cmd.Args, want) {
		t.Errorf("args = %v, want %v", cmd.Args, want)
	}
	if cmd.Stdin == nil {
		t.Error("stdin should be an empty reader")
	}
}

func TestBuildCmd_StripsClaudeCodeEnv(t *testing.T) {
	t.Setenv("CLAUDECODE", "1")
	t.Setenv("CLAUDECODE_ENTRYPOINT", "cli")
	t.Setenv("OMNIJOURNAL_KEEP", "yes")

	cmd := (&Generator{}).BuildCmd(context.Background(), "", "x")
	for _, e := range cmd.Env {
		if strings.HasPrefix(e, "CLAUDECODE") {
			t.Errorf("env still contains %s", e)
		}
	}
	if !slices.Contains(cmd.Env, "OMNIJOURNAL_KEEP=yes") {
		t.Error("unrelated env vars should be kept")
	}
	if slices.Contains(cmd.Args, "--system-prompt") {
		t.Error("empty system prompt should not be passed")
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil { //nolint:gosec // test script
		t.Fatal(err)
	}
	return path
}

func TestGenerate_ReturnsTrimmedStdout(t *testing.T) {
	path := writeScript(t, `printf '  ## Daily Achievements\n\n'`)
	out, err := (&Generator{Path: path}).Generate(context.Background(), "sys", "logs")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "## Daily Achievements" {
		t.Errorf("out = %q", out)
	}
}

func TestGenerate_ReportsStderr(t *testing.T) {
	path := writeScript(t, `echo "not logged in" >&2; exit 1`)
	_, err := (&Generator{Path: path}).Generate(context.Background(), "sys", "logs")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
