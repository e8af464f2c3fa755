// Package claudecli generates text by running the claude CLI in print mode.
package claudecli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// Generator runs `claude -p` for each request.
type Generator struct {
	// Path is the claude executable. Empty means "claude" on PATH.
	Path string
	// Model is passed as --model when set.
	Model string
}

// BuildCmd constructs the exec.Cmd for a claude -p invocation.
// It sets Stdin to an empty reader (prevents hang in non-TTY daemon context)
// and strips CLAUDECODE* env vars (prevents altered spawned-claude behavior).
func (g *Generator) BuildCmd(ctx context.Context, system, user string) *exec.Cmd {
	path := g.Path
	if path == "" {
		path = "claude"
	}
	args := []string{"-p", user}
	if system != "" {
		args = append(args, "--system-prompt", system)
	}
	if g.Model != "" {
		args = append(args, "--model", g.Model)
	}
	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // configured executable
	cmd.Stdin = strings.NewReader("")
	cmd.Env = slices.DeleteFunc(os.Environ(), func(e string) bool {
		return strings.HasPrefix(e, "CLAUDECODE")
	})
	return cmd
}

// Generate implements summary.Generator.
func (g *Generator) Generate(ctx context.Context, system, user string) (string, error) {
	cmd := g.BuildCmd(ctx, system, user)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("claude: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("claude: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
