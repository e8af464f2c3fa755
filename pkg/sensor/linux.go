package sensor

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Linux reads sensors through common X11 desktop tools (xprintidle, xdotool,
// iwgetid, playerctl) and sysfs.
type Linux struct {
	runner    CommandRunner
	timeout   time.Duration
	PowerPath string // sysfs "online" attribute of the mains supply
}

// NewLinux creates a Linux Port. Each query is bounded by timeout.
func NewLinux(runner CommandRunner, timeout time.Duration) *Linux {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Linux{runner: runner, timeout: timeout, PowerPath: "/sys/class/power_supply/AC/online"}
}

func (l *Linux) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	out, err := l.runner.Run(ctx, name, args...)
	return strings.TrimSpace(string(out)), err
}

// IdleSeconds implements Port; xprintidle reports milliseconds.
func (l *Linux) IdleSeconds(ctx context.Context) float64 {
	out, err := l.run(ctx, "xprintidle")
	if err != nil {
		return 0
	}
	ms, err := strconv.ParseFloat(out, 64)
	if err != nil || ms < 0 {
		return 0
	}
	return ms / 1000
}

// ActiveWindow implements Port. The application name is the command name of
// the process owning the focused window.
func (l *Linux) ActiveWindow(ctx context.Context) (app, title string) {
	title, err := l.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return "", ""
	}
	pid, err := l.run(ctx, "xdotool", "getactivewindow", "getwindowpid")
	if err != nil || pid == "" {
		return "", title
	}
	app, err = l.run(ctx, "ps", "-p", pid, "-o", "comm=")
	if err != nil {
		return "", title
	}
	return app, title
}

// WiFiSSID implements Port via iwgetid.
func (l *Linux) WiFiSSID(ctx context.Context) string {
	out, err := l.run(ctx, "iwgetid", "-r")
	if err != nil {
		// iwgetid exits non-zero when no interface is associated.
		return SSIDUnknown
	}
	if out == "" {
		return SSIDOffline
	}
	return out
}

// MediaPlaying implements Port via playerctl (MPRIS).
func (l *Linux) MediaPlaying(ctx context.Context) bool {
	out, err := l.run(ctx, "playerctl", "status")
	if err != nil {
		return false
	}
	return strings.EqualFold(out, "Playing")
}

// BatteryStatus implements Port by reading the mains supply state.
func (l *Linux) BatteryStatus(ctx context.Context) string {
	out, err := l.run(ctx, "cat", l.PowerPath)
	if err != nil {
		return PowerUnknown
	}
	switch out {
	case "1":
		return PowerAC
	case "0":
		return PowerBattery
	default:
		return PowerUnknown
	}
}
