package sensor

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// windowScript asks System Events for the frontmost process and its first
// window title, joined by windowSep.
const windowScript = `
global frontApp, frontAppName, windowTitle
set windowTitle to ""
tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set frontAppName to name of frontApp
	try
		tell process frontAppName
			set windowTitle to value of attribute "AXTitle" of window 1
		end tell
	end try
end tell
return frontAppName & " ||| " & windowTitle
`

const windowSep = "|||"

// Darwin reads sensors through macOS command-line tools (ioreg, pmset,
// networksetup, osascript).
type Darwin struct {
	runner    CommandRunner
	timeout   time.Duration
	Interface string // Wi-Fi hardware port, default en0
}

// NewDarwin creates a macOS Port. Each query is bounded by timeout.
func NewDarwin(runner CommandRunner, timeout time.Duration) *Darwin {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Darwin{runner: runner, timeout: timeout, Interface: "en0"}
}

func (d *Darwin) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	out, err := d.runner.Run(ctx, name, args...)
	return string(out), err
}

// IdleSeconds implements Port using the HIDIdleTime counter (nanoseconds).
func (d *Darwin) IdleSeconds(ctx context.Context) float64 {
	out, err := d.run(ctx, "ioreg", "-c", "IOHIDSystem")
	if err != nil {
		return 0
	}
	return parseHIDIdle(out)
}

func parseHIDIdle(out string) float64 {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "HIDIdleTime") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return 0
		}
		ns, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil || ns < 0 {
			return 0
		}
		return ns / 1e9
	}
	return 0
}

// ActiveWindow implements Port via osascript.
func (d *Darwin) ActiveWindow(ctx context.Context) (app, title string) {
	out, err := d.run(ctx, "osascript", "-e", windowScript)
	if err != nil {
		return "", ""
	}
	return parseWindowResult(out)
}

func parseWindowResult(out string) (app, title string) {
	out = strings.TrimSpace(out)
	before, after, found := strings.Cut(out, windowSep)
	if !found {
		return out, ""
	}
	app = strings.TrimSpace(before)
	title = strings.TrimSpace(after)
	if title == "missing value" {
		title = ""
	}
	return app, title
}

// WiFiSSID implements Port via networksetup.
func (d *Darwin) WiFiSSID(ctx context.Context) string {
	out, err := d.run(ctx, "networksetup", "-getairportnetwork", d.Interface)
	if err != nil {
		return SSIDUnknown
	}
	return parseAirportNetwork(out)
}

func parseAirportNetwork(out string) string {
	out = strings.TrimSpace(out)
	if !strings.Contains(out, "Current Wi-Fi Network") {
		return SSIDOffline
	}
	_, ssid, found := strings.Cut(out, ": ")
	if !found || strings.TrimSpace(ssid) == "" {
		return SSIDOffline
	}
	return strings.TrimSpace(ssid)
}

// MediaPlaying implements Port by looking for a display-sleep power
// assertion, which video players hold while playing.
func (d *Darwin) MediaPlaying(ctx context.Context) bool {
	out, err := d.run(ctx, "pmset", "-g", "assertions")
	if err != nil {
		return false
	}
	return parseAssertions(out)
}

func parseAssertions(out string) bool {
	if !strings.Contains(out, "PreventUserIdleDisplaySleep") {
		return false
	}
	return strings.Contains(out, "level=255") || strings.Contains(out, "PreventUserIdleDisplaySleep 1")
}

// BatteryStatus implements Port via pmset.
func (d *Darwin) BatteryStatus(ctx context.Context) string {
	out, err := d.run(ctx, "pmset", "-g", "batt")
	if err != nil {
		return PowerUnknown
	}
	if strings.Contains(out, "AC Power") {
		return PowerAC
	}
	return PowerBattery
}
