// Package recorder is the activity state machine. Every tick it samples the
// sensors, classifies the focused window, derives one of three states
// (MEDIA, IDLE, ACTIVE) and logs only what changed. Harvests are handed to a
// background dispatcher so a tick never waits on a model.
//
// The Recorder is the only writer of its ActivityState. Harvest tasks receive
// a copy of what they need at dispatch time.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"omnijournal/pkg/classify"
	"omnijournal/pkg/harvest"
	"omnijournal/pkg/journal"
	"omnijournal/pkg/sensor"
)

// State is the categorical state derived on each tick.
type State string

// Recorder states.
const (
	StateMedia  State = "MEDIA"
	StateIdle   State = "IDLE"
	StateActive State = "ACTIVE"
)

// Derive computes the state for one snapshot. MEDIA wins over IDLE, so a
// user watching a video with no input is never "away".
func Derive(snap sensor.Snapshot, cat classify.Category, idleThreshold time.Duration) State {
	switch {
	case cat == classify.Media || snap.MediaPlaying:
		return StateMedia
	case snap.IdleSeconds > idleThreshold.Seconds():
		return StateIdle
	default:
		return StateActive
	}
}

// Journal is the append target for tick entries.
type Journal interface {
	Log(typ journal.Type, content string, ctx map[string]string) error
}

// Harvester starts a background harvest. *harvest.Dispatcher satisfies it.
type Harvester interface {
	Dispatch(req harvest.Request) (string, error)
}

// Config holds the timing policy.
type Config struct {
	TickInterval         time.Duration
	IdleThreshold        time.Duration
	MediaHarvestInterval time.Duration
	WorkProgressInterval time.Duration
	// SplitThrottle keeps independent dispatch timestamps for the MEDIA and
	// ACTIVE branches. By default one timestamp throttles both.
	SplitThrottle bool
}

// ActivityState is what the recorder remembers between ticks.
type ActivityState struct {
	LastApp      string
	LastTitle    string
	LastSSID     string
	LastCategory classify.Category
	Idle         bool

	// LastDispatch is the shared throttle. With SplitThrottle the MEDIA
	// branch uses LastMediaDispatch and the ACTIVE branch LastWorkDispatch.
	LastDispatch      time.Time
	LastMediaDispatch time.Time
	LastWorkDispatch  time.Time
}

// Recorder runs the tick loop.
type Recorder struct {
	cfg        Config
	sensors    sensor.Port
	classifier *classify.Classifier
	journal    Journal
	harvester  Harvester
	now        func() time.Time

	state ActivityState
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the tick time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New creates a Recorder. A nil classifier uses the default rules.
func New(cfg Config, sensors sensor.Port, classifier *classify.Classifier, j Journal, h Harvester, opts ...Option) *Recorder {
	if classifier == nil {
		classifier = classify.New(nil)
	}
	r := &Recorder{
		cfg:        cfg,
		sensors:    sensors,
		classifier: classifier,
		journal:    j,
		harvester:  h,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns a copy of the activity state. Not safe to call while Run is
// active.
func (r *Recorder) State() ActivityState { return r.state }

// Run ticks immediately and then every TickInterval until ctx is done.
func (r *Recorder) Run(ctx context.Context) error {
	interval := r.cfg.TickInterval
	if interval <= 0 {
		return fmt.Errorf("recorder: tick interval must be positive, got %v", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs one sample-classify-log cycle and returns the derived state.
func (r *Recorder) Tick(ctx context.Context) State {
	now := r.now()
	snap := sensor.Sample(ctx, r.sensors, now)
	if ctx.Err() != nil {
		return ""
	}
	cat, prompt := r.classifier.Classify(snap.App, snap.Title)
	st := Derive(snap, cat, r.cfg.IdleThreshold)

	switch st {
	case StateMedia:
		r.onMedia(snap, cat, prompt, now)
	case StateIdle:
		r.onIdle()
	case StateActive:
		r.onActive(snap, cat, prompt, now)
	}
	r.state.LastCategory = cat
	return st
}

func (r *Recorder) onMedia(snap sensor.Snapshot, cat classify.Category, prompt string, now time.Time) {
	r.state.Idle = false

	if r.windowChanged(snap) {
		r.log(journal.Watching, subject(snap), map[string]string{"wifi": snap.SSID})
		r.state.LastApp, r.state.LastTitle = snap.App, snap.Title
	}

	last := &r.state.LastDispatch
	if r.cfg.SplitThrottle {
		last = &r.state.LastMediaDispatch
	}
	if now.Sub(*last) > r.cfg.MediaHarvestInterval {
		r.dispatch(journal.Harvest, snap, cat, prompt, now, last)
	}
}

func (r *Recorder) onIdle() {
	if r.state.Idle {
		return
	}
	mins := int(r.cfg.IdleThreshold.Seconds() / 60)
	r.log(journal.Idle, fmt.Sprintf("User is away (Idle > %d mins)", mins), nil)
	r.state.Idle = true
}

func (r *Recorder) onActive(snap sensor.Snapshot, cat classify.Category, prompt string, now time.Time) {
	if r.state.Idle {
		r.log(journal.Idle, "User is active again", nil)
		r.state.Idle = false
	}

	if snap.SSID != r.state.LastSSID {
		r.log(journal.WiFi, "Location changed: "+snap.SSID, map[string]string{"power": snap.Power})
		r.state.LastSSID = snap.SSID
	}

	if r.windowChanged(snap) {
		r.log(journal.Focus, subject(snap), map[string]string{"wifi": snap.SSID, "category": string(cat)})
		r.state.LastApp, r.state.LastTitle = snap.App, snap.Title
	}

	if !cat.IsWork() {
		return
	}
	last := &r.state.LastDispatch
	if r.cfg.SplitThrottle {
		last = &r.state.LastWorkDispatch
	}
	if now.Sub(*last) > r.cfg.WorkProgressInterval {
		r.dispatch(journal.Progress, snap, cat, prompt, now, last)
	}
}

// windowChanged reports a focused window different from the last logged
// one. Snapshots without an application never count as a change.
func (r *Recorder) windowChanged(snap sensor.Snapshot) bool {
	return snap.HasWindow() && (snap.App != r.state.LastApp || snap.Title != r.state.LastTitle)
}

// dispatch hands a harvest to the background and moves the throttle only
// when the dispatcher accepted it.
func (r *Recorder) dispatch(typ journal.Type, snap sensor.Snapshot, cat classify.Category, prompt string, now time.Time, last *time.Time) {
	if r.harvester == nil {
		return
	}
	req := harvest.Request{Type: typ, Prompt: prompt, Subject: subject(snap), Category: cat}
	id, err := r.harvester.Dispatch(req)
	if err != nil {
		slog.Debug("harvest skipped", "type", typ, "reason", err)
		return
	}
	*last = now
	slog.Info("harvest dispatched", "type", typ, "task", id, "category", cat, "app", snap.App)
}

func (r *Recorder) log(typ journal.Type, content string, ctx map[string]string) {
	// Append failures are already reported by the journal; the loop goes on.
	_ = r.journal.Log(typ, content, ctx)
}

func subject(snap sensor.Snapshot) string {
	return fmt.Sprintf("[%s] %s", snap.App, snap.Title)
}
