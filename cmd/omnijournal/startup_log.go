package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// startupLog provides step-by-step progress output with spinner support.
type startupLog struct {
	w     io.Writer
	isTTY bool
	mu    sync.Mutex
}

// newStartupLog creates a progress logger that writes to w.
// isTTY controls whether to use animated spinners (true) or static output (false).
func newStartupLog(w io.Writer, isTTY bool) *startupLog {
	return &startupLog{
		w:     w,
		isTTY: isTTY,
	}
}

// Step prints a completed step with a checkmark.
func (s *startupLog) Step(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "✓ %s\n", msg)
}

// Warn prints a step that was skipped or degraded.
func (s *startupLog) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "! %s\n", msg)
}

// StartSpinner starts an animated spinner for long-running operations.
// Returns a function that stops the spinner; ok selects the final mark.
// In non-TTY mode, prints a static line and the stop function prints the mark.
func (s *startupLog) StartSpinner(msg string) func(ok bool) {
	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}

	if !s.isTTY {
		s.mu.Lock()
		fmt.Fprintf(s.w, "%s\n", msg)
		s.mu.Unlock()

		return func(ok bool) {
			s.mu.Lock()
			defer s.mu.Unlock()
			fmt.Fprintf(s.w, "%s %s\n", mark(ok), msg)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)

	spinnerFrames := []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}
	frameIdx := 0

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%c %s", spinnerFrames[frameIdx], msg)
				s.mu.Unlock()
				frameIdx = (frameIdx + 1) % len(spinnerFrames)
			}
		}
	}()

	stopOnce := sync.Once{}
	return func(ok bool) {
		stopOnce.Do(func() {
			cancel()
			wg.Wait()

			s.mu.Lock()
			defer s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s %s\n", mark(ok), msg)
		})
	}
}
