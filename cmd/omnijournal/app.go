package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"omnijournal/pkg/classify"
	"omnijournal/pkg/claudecli"
	"omnijournal/pkg/config"
	"omnijournal/pkg/eventlog"
	"omnijournal/pkg/harvest"
	"omnijournal/pkg/journal"
	"omnijournal/pkg/ollama"
	"omnijournal/pkg/recorder"
	"omnijournal/pkg/sensor"
	"omnijournal/pkg/summary"
	"omnijournal/pkg/watch"
)

// providers are the external capabilities a session talks to. Tests swap them
// for fakes.
type providers struct {
	sensors sensor.Port
	vision  harvest.Vision
	capture harvest.Capturer
	text    summary.Generator
}

// defaultProviders builds the platform sensors, the ollama vision client and
// the configured text provider.
func defaultProviders(cfg config.Config) providers {
	client := ollama.New(cfg.OllamaURL)
	return providers{
		sensors: sensor.NewDefault(cfg.SensorDeadline()),
		vision:  &ollama.Vision{Client: client, Model: cfg.VisionModel},
		capture: harvest.NewScreenCapturer(nil),
		text:    textProvider(cfg, client),
	}
}

// textProvider picks the summary generator named by text_provider.
func textProvider(cfg config.Config, client *ollama.Client) summary.Generator {
	if cfg.TextProvider == config.ProviderClaude {
		return &claudecli.Generator{Path: cfg.ClaudePath}
	}
	return &ollama.Text{Client: client, Model: cfg.TextModel}
}

// session is one recorder lifetime: from startup until the summary is written.
type session struct {
	cfg      config.Config
	out      io.Writer
	log      *startupLog
	journal  *journal.Journal
	index    *eventlog.Index
	harvest  *harvest.Dispatcher
	recorder *recorder.Recorder
	watcher  *watch.Watcher
	compiler *summary.Compiler
	now      func() time.Time
}

// newSession wires every component. A missing monitor path or an index that
// cannot be opened degrades the session instead of failing it.
func newSession(cfg config.Config, out io.Writer, isTTY bool, p providers) (*session, error) {
	s := &session{
		cfg: cfg,
		out: out,
		log: newStartupLog(out, isTTY),
		now: time.Now,
	}

	if err := os.MkdirAll(cfg.LogRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create log root: %w", err)
	}
	s.log.Step("Journal: " + cfg.LogRoot)

	opts := []journal.Option{
		journal.WithConsole(out, isTTY),
		journal.WithFsync(cfg.JournalFsync),
	}
	if cfg.IndexEnabled {
		idx, err := eventlog.Open(cfg.IndexPath())
		if err != nil {
			slog.Warn("event index unavailable", "path", cfg.IndexPath(), "err", err)
			s.log.Warn("Index disabled: " + err.Error())
		} else {
			s.index = idx
			opts = append(opts, journal.WithMirror(idx))
			s.log.Step("Index: " + idx.Path())
		}
	}
	s.journal = journal.New(cfg.LogRoot, opts...)

	s.harvest = harvest.NewDispatcher(p.vision, p.capture, s.journal,
		harvest.WithMaxInFlight(cfg.HarvestMaxInflight),
		harvest.WithTimeout(cfg.HarvestDeadline()),
	)

	s.recorder = recorder.New(recorder.Config{
		TickInterval:         cfg.Tick(),
		IdleThreshold:        cfg.Idle(),
		MediaHarvestInterval: cfg.MediaInterval(),
		WorkProgressInterval: cfg.WorkInterval(),
		SplitThrottle:        cfg.SplitHarvestThrottle,
	}, p.sensors, classify.New(cfg.ClassifierRules()), s.journal, s.harvest)

	if cfg.MonitorPath != "" {
		w, err := watch.New(cfg.MonitorPath, s.journal, p.sensors,
			watch.WithIgnoreSuffixes(cfg.IgnoreSuffixes),
		)
		if err != nil {
			slog.Warn("file watcher disabled", "path", cfg.MonitorPath, "err", err)
			s.log.Warn("Watcher disabled: " + err.Error())
		} else {
			s.watcher = w
			s.log.Step("Watching: " + cfg.MonitorPath)
		}
	}

	s.compiler = summary.NewCompiler(cfg.LogRoot, p.text,
		summary.WithBudget(cfg.SummaryBudget),
		summary.WithOutput(out),
	)
	return s, nil
}

// run blocks until ctx is cancelled, then shuts down in order: watcher,
// in-flight harvests, summary, journal and index.
func (s *session) run(ctx context.Context) error {
	var wg sync.WaitGroup
	if s.watcher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.watcher.Run(ctx); err != nil {
				slog.Warn("file watcher stopped", "err", err)
			}
		}()
	}

	s.log.Step(fmt.Sprintf("Recording every %s", s.cfg.Tick()))
	runErr := s.recorder.Run(ctx)
	wg.Wait()

	if err := s.harvest.Close(s.cfg.Grace()); err != nil {
		slog.Warn("harvests still running at shutdown", "err", err)
	}

	s.summarize()

	var closeErr error
	if err := s.journal.Close(); err != nil {
		closeErr = fmt.Errorf("close journal: %w", err)
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close index: %w", err))
		}
	}

	return errors.Join(runErr, closeErr)
}

// summarize compiles today's summary with its own deadline. Failures are
// reported and do not change the exit status.
func (s *session) summarize() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SummaryDeadline())
	defer cancel()

	stop := s.log.StartSpinner("Compiling daily summary")
	res, err := s.compiler.Compile(ctx, s.now())
	if errors.Is(err, summary.ErrNoEntries) {
		stop(true)
		s.log.Warn("No activity recorded today, summary skipped")
		return
	}
	if err != nil {
		stop(false)
		slog.Error("summary failed", "err", err)
		s.log.Warn("Summary failed: " + err.Error())
		return
	}
	stop(true)
	s.log.Step(fmt.Sprintf("Summary saved: %s (%d entries)", res.Path, res.Entries))
}
