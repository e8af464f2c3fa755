// Package harvest runs vision-model calls in the background on behalf of the
// recorder. A Dispatcher owns a fixed number of in-flight slots; requests that
// arrive while every slot is busy are rejected rather than queued.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"omnijournal/pkg/classify"
	"omnijournal/pkg/journal"
)

// --- Capabilities ---

// Vision describes an image given a prompt.
type Vision interface {
	Describe(ctx context.Context, prompt string, image []byte) (string, error)
}

// Capturer grabs the current screen as an encoded image.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Sink receives the completion entry of every harvest. *journal.Journal
// satisfies it.
type Sink interface {
	Log(typ journal.Type, content string, ctx map[string]string) error
}

// --- Errors ---

var (
	// ErrBusy is returned when every in-flight slot is taken.
	ErrBusy = errors.New("harvest: all slots busy")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("harvest: dispatcher closed")
	// ErrGraceExceeded is returned by Close when tasks were still running at
	// the end of the grace period.
	ErrGraceExceeded = errors.New("harvest: tasks still running after grace period")
)

// ErrorPrefix starts the content of a failed harvest result.
const ErrorPrefix = "Error during visual harvesting: "

// --- Requests and tasks ---

// Request is everything a harvest needs, captured at dispatch time.
type Request struct {
	Type     journal.Type // Harvest or Progress
	Prompt   string
	Subject  string // "[app] title"
	Category classify.Category
}

// Task is a running harvest.
type Task struct {
	ID      string
	Request Request
	Started time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxInFlight sets the number of concurrent harvests. Values below 1
// are treated as 1.
func WithMaxInFlight(n int) Option {
	return func(d *Dispatcher) {
		if n < 1 {
			n = 1
		}
		d.slots = make(chan struct{}, n)
	}
}

// WithTimeout bounds each harvest call. Zero disables the bound.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// WithClock overrides the task start time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// --- Dispatcher ---

// Dispatcher runs harvests asynchronously with bounded concurrency.
type Dispatcher struct {
	vision  Vision
	capture Capturer
	sink    Sink
	slots   chan struct{}
	timeout time.Duration // per-call bound (defaults to 2 minutes)
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[string]Task
	closed bool
}

// NewDispatcher creates a Dispatcher with one slot and a two-minute timeout
// unless overridden.
func NewDispatcher(vision Vision, capture Capturer, sink Sink, opts ...Option) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		vision:  vision,
		capture: capture,
		sink:    sink,
		slots:   make(chan struct{}, 1),
		timeout: 2 * time.Minute,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		active:  make(map[string]Task),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch starts a harvest in the background and returns its task ID. It
// never blocks on the harvest itself.
func (d *Dispatcher) Dispatch(req Request) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", ErrClosed
	}
	select {
	case d.slots <- struct{}{}:
	default:
		return "", ErrBusy
	}

	task := Task{ID: uuid.New().String(), Request: req, Started: d.now()}
	d.active[task.ID] = task
	d.wg.Add(1)

	go d.run(task)
	return task.ID, nil
}

// TryDispatch is Dispatch reporting only whether the harvest was accepted.
func (d *Dispatcher) TryDispatch(req Request) bool {
	_, err := d.Dispatch(req)
	return err == nil
}

// Busy reports whether every slot is taken.
func (d *Dispatcher) Busy() bool {
	return len(d.slots) == cap(d.slots)
}

// Active returns the running tasks.
func (d *Dispatcher) Active() []Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	tasks := make([]Task, 0, len(d.active))
	for _, t := range d.active {
		tasks = append(tasks, t)
	}
	return tasks
}

// Close rejects further dispatches, cancels running harvests and waits up to
// grace for them to return. Cancelled harvests write no journal entry.
func (d *Dispatcher) Close(grace time.Duration) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		n := len(d.Active())
		slog.Warn("harvest tasks abandoned at shutdown", "count", n, "grace", grace)
		return fmt.Errorf("%w: %d task(s)", ErrGraceExceeded, n)
	}
}

// run executes one harvest and records its outcome.
func (d *Dispatcher) run(task Task) {
	defer func() {
		d.mu.Lock()
		delete(d.active, task.ID)
		d.mu.Unlock()
		<-d.slots
		d.wg.Done()
	}()

	ctx := d.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	result := d.harvest(ctx, task.Request.Prompt)

	if d.ctx.Err() != nil {
		slog.Info("harvest cancelled by shutdown", "task", task.ID, "type", task.Request.Type, "subject", task.Request.Subject)
		return
	}

	content := fmt.Sprintf("Analyzed %s: %s", task.Request.Subject, result)
	_ = d.sink.Log(task.Request.Type, content, map[string]string{
		"category": string(task.Request.Category),
		"task":     task.ID,
	})
}

// harvest captures the screen and asks the vision model about it. Failures,
// including panics in either capability, become an error string.
func (d *Dispatcher) harvest(ctx context.Context, prompt string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = fmt.Sprintf("%spanic: %v", ErrorPrefix, r)
		}
	}()

	img, err := d.capture.Capture(ctx)
	if err != nil {
		return ErrorPrefix + err.Error()
	}
	text, err := d.vision.Describe(ctx, prompt, img)
	if err != nil {
		return ErrorPrefix + err.Error()
	}
	return strings.TrimSpace(text)
}
