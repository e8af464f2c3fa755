// Package sensor samples the desktop context: idle time, the focused window,
// the Wi-Fi network, media playback and power state.
//
// Every Port query is total. Implementations absorb their own failures and
// return the documented default instead of an error, so callers can treat any
// returned value as a valid, if uninformative, sample.
package sensor

import (
	"context"
	"runtime"
	"time"
)

// Defaults returned by Port implementations when the underlying query fails.
const (
	SSIDUnknown  = "Unknown"
	SSIDOffline  = "Offline"
	PowerUnknown = "Unknown"
	PowerAC      = "Plugged In"
	PowerBattery = "Battery Mode"
)

// Port is the uniform query interface over the desktop sensors.
type Port interface {
	// IdleSeconds returns seconds since the last user input, or 0 on failure.
	IdleSeconds(ctx context.Context) float64
	// ActiveWindow returns the focused application and window title, or
	// empty strings on failure.
	ActiveWindow(ctx context.Context) (app, title string)
	// WiFiSSID returns the current network name, SSIDOffline when not
	// associated, or SSIDUnknown on failure.
	WiFiSSID(ctx context.Context) string
	// MediaPlaying reports system-level media playback, false on failure.
	MediaPlaying(ctx context.Context) bool
	// BatteryStatus returns PowerAC, PowerBattery, or PowerUnknown.
	BatteryStatus(ctx context.Context) string
}

// Snapshot is one tick's raw sensor readings.
type Snapshot struct {
	Taken        time.Time
	IdleSeconds  float64
	App          string
	Title        string
	SSID         string
	MediaPlaying bool
	Power        string
}

// HasWindow reports whether a focused application was observed.
func (s Snapshot) HasWindow() bool {
	return s.App != ""
}

// Sample queries every sensor once and returns the combined snapshot.
func Sample(ctx context.Context, p Port, now time.Time) Snapshot {
	app, title := p.ActiveWindow(ctx)
	idle := p.IdleSeconds(ctx)
	if idle < 0 {
		idle = 0
	}
	return Snapshot{
		Taken:        now,
		IdleSeconds:  idle,
		App:          app,
		Title:        title,
		SSID:         p.WiFiSSID(ctx),
		MediaPlaying: p.MediaPlaying(ctx),
		Power:        p.BatteryStatus(ctx),
	}
}

// NewDefault returns the Port for the running platform. Unsupported platforms
// get a Static port that reports defaults.
func NewDefault(timeout time.Duration) Port {
	runner := &ExecRunner{}
	switch runtime.GOOS {
	case "darwin":
		return NewDarwin(runner, timeout)
	case "linux":
		return NewLinux(runner, timeout)
	default:
		return &Static{SSID: SSIDUnknown, Power: PowerUnknown}
	}
}

// Static is a Port returning fixed values. Useful for tests and as the
// fallback on unsupported platforms.
type Static struct {
	Idle    float64
	App     string
	Title   string
	SSID    string
	Playing bool
	Power   string
}

// IdleSeconds implements Port.
func (s *Static) IdleSeconds(context.Context) float64 { return s.Idle }

// ActiveWindow implements Port.
func (s *Static) ActiveWindow(context.Context) (app, title string) { return s.App, s.Title }

// WiFiSSID implements Port.
func (s *Static) WiFiSSID(context.Context) string { return s.SSID }

// MediaPlaying implements Port.
func (s *Static) MediaPlaying(context.Context) bool { return s.Playing }

// BatteryStatus implements Port.
func (s *Static) BatteryStatus(context.Context) string { return s.Power }
