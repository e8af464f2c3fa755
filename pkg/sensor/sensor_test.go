package sensor //nolint:testpackage // parsers are unexported

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRunner returns canned output keyed by "name arg0 arg1...".
type fakeRunner struct {
	out   map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))
	if name == "osascript" {
		key = "osascript"
	}
	f.calls = append(f.calls, key)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("query without deadline")
	}
	if f.fail[key] {
		return nil, errors.New("boom")
	}
	out, ok := f.out[key]
	if !ok {
		return nil, errors.New("command not found")
	}
	return []byte(out), nil
}

const ioregOutput = `    |   "HIDIdleTime" = 125000000000
    |   "HIDSomethingElse" = 1`

func TestDarwin_Queries(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"ioreg -c IOHIDSystem":                ioregOutput,
		"osascript":                           "Code ||| main.go - omnijournal\n",
		"networksetup -getairportnetwork en0": "Current Wi-Fi Network: CampusNet\n",
		"pmset -g assertions":                 "   PreventUserIdleDisplaySleep    1\n",
		"pmset -g batt":                       "Now drawing from 'AC Power'\n",
	}}
	d := NewDarwin(r, time.Second)
	ctx := context.Background()

	if got := d.IdleSeconds(ctx); got != 125 {
		t.Errorf("IdleSeconds = %v, want 125", got)
	}
	app, title := d.ActiveWindow(ctx)
	if app != "Code" || title != "main.go - omnijournal" {
		t.Errorf("ActiveWindow = (%q, %q)", app, title)
	}
	if got := d.WiFiSSID(ctx); got != "CampusNet" {
		t.Errorf("WiFiSSID = %q, want CampusNet", got)
	}
	if !d.MediaPlaying(ctx) {
		t.Error("MediaPlaying = false, want true")
	}
	if got := d.BatteryStatus(ctx); got != PowerAC {
		t.Errorf("BatteryStatus = %q, want %q", got, PowerAC)
	}
}

func TestDarwin_FailuresReturnDefaults(t *testing.T) {
	r := &fakeRunner{out: map[string]string{}}
	d := NewDarwin(r, time.Second)
	ctx := context.Background()

	if got := d.IdleSeconds(ctx); got != 0 {
		t.Errorf("IdleSeconds = %v, want 0", got)
	}
	if app, title := d.ActiveWindow(ctx); app != "" || title != "" {
		t.Errorf("ActiveWindow = (%q, %q), want empty", app, title)
	}
	if got := d.WiFiSSID(ctx); got != SSIDUnknown {
		t.Errorf("WiFiSSID = %q, want %q", got, SSIDUnknown)
	}
	if d.MediaPlaying(ctx) {
		t.Error("MediaPlaying = true, want false")
	}
	if got := d.BatteryStatus(ctx); got != PowerUnknown {
		t.Errorf("BatteryStatus = %q, want %q", got, PowerUnknown)
	}
}

func TestParseWindowResult(t *testing.T) {
	tests := []struct {
		in         string
		app, title string
	}{
		{"Safari ||| Lecture - YouTube", "Safari", "Lecture - YouTube"},
		{"Finder ||| missing value", "Finder", ""},
		{"Finder ||| ", "Finder", ""},
		{"loginwindow", "loginwindow", ""},
	}
	for _, tt := range tests {
		app, title := parseWindowResult(tt.in)
		if app != tt.app || title != tt.title {
			t.Errorf("parseWindowResult(%q) = (%q, %q), want (%q, %q)", tt.in, app, title, tt.app, tt.title)
		}
	}
}

func TestParseAirportNetwork(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Current Wi-Fi Network: Home 5G", "Home 5G"},
		{"You are not associated with an AirPort network.", SSIDOffline},
		{"Current Wi-Fi Network: ", SSIDOffline},
	}
	for _, tt := range tests {
		if got := parseAirportNetwork(tt.in); got != tt.want {
			t.Errorf("parseAirportNetwork(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAssertions(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"PreventUserIdleDisplaySleep 0", false},
		{"PreventUserIdleDisplaySleep 1", true},
		{"pid 42(IINA): PreventUserIdleDisplaySleep named: \"Video\" level=255", true},
		{"PreventUserIdleSystemSleep 1", false},
	}
	for _, tt := range tests {
		if got := parseAssertions(tt.in); got != tt.want {
			t.Errorf("parseAssertions(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHIDIdle_Malformed(t *testing.T) {
	if got := parseHIDIdle(`"HIDIdleTime" = abc`); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
	if got := parseHIDIdle(""); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestLinux_Queries(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"xprintidle":                            "61500\n",
		"xdotool getactivewindow getwindowname": "notes.md - Obsidian\n",
		"xdotool getactivewindow getwindowpid":  "4242\n",
		"ps -p 4242 -o comm=":                   "obsidian\n",
		"iwgetid -r":                            "\n",
		"playerctl status":                      "Playing\n",
		"cat /sys/class/power_supply/AC/online": "0\n",
	}}
	l := NewLinux(r, time.Second)
	ctx := context.Background()

	if got := l.IdleSeconds(ctx); got != 61.5 {
		t.Errorf("IdleSeconds = %v, want 61.5", got)
	}
	app, title := l.ActiveWindow(ctx)
	if app != "obsidian" || title != "notes.md - Obsidian" {
		t.Errorf("ActiveWindow = (%q, %q)", app, title)
	}
	if got := l.WiFiSSID(ctx); got != SSIDOffline {
		t.Errorf("WiFiSSID = %q, want %q", got, SSIDOffline)
	}
	if !l.MediaPlaying(ctx) {
		t.Error("MediaPlaying = false, want true")
	}
	if got := l.BatteryStatus(ctx); got != PowerBattery {
		t.Errorf("BatteryStatus = %q, want %q", got, PowerBattery)
	}
}

func TestLinux_FailuresReturnDefaults(t *testing.T) {
	l := NewLinux(&fakeRunner{out: map[string]string{}}, time.Second)
	ctx := context.Background()

	if got := l.IdleSeconds(ctx); got != 0 {
		t.Errorf("IdleSeconds = %v, want 0", got)
	}
	if app, title := l.ActiveWindow(ctx); app != "" || title != "" {
		t.Errorf("ActiveWindow = (%q, %q), want empty", app, title)
	}
	if got := l.WiFiSSID(ctx); got != SSIDUnknown {
		t.Errorf("WiFiSSID = %q, want %q", got, SSIDUnknown)
	}
	if got := l.BatteryStatus(ctx); got != PowerUnknown {
		t.Errorf("BatteryStatus = %q, want %q", got, PowerUnknown)
	}
}

func TestSample(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	p := &Static{Idle: -4, App: "VSCode", Title: "main.go", SSID: "Lab", Playing: true, Power: PowerAC}

	s := Sample(context.Background(), p, now)

	if s.IdleSeconds != 0 {
		t.Errorf("negative idle should clamp to 0, got %v", s.IdleSeconds)
	}
	if !s.Taken.Equal(now) || s.App != "VSCode" || s.Title != "main.go" || s.SSID != "Lab" || !s.MediaPlaying || s.Power != PowerAC {
		t.Errorf("unexpected snapshot: %+v", s)
	}
	if !s.HasWindow() {
		t.Error("HasWindow = false, want true")
	}
	if (Snapshot{}).HasWindow() {
		t.Error("empty snapshot should have no window")
	}
}
