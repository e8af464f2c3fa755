package harvest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"omnijournal/pkg/sensor"
)

// ErrNoCapture is returned on platforms without a screen capture command.
var ErrNoCapture = errors.New("screen capture not supported on this platform")

// ScreenCapturer grabs the screen as JPEG through a platform command:
// screencapture on darwin, ImageMagick import on linux.
type ScreenCapturer struct {
	runner sensor.CommandRunner
	goos   string
}

// NewScreenCapturer returns a capturer for the running platform.
func NewScreenCapturer(runner sensor.CommandRunner) *ScreenCapturer {
	if runner == nil {
		runner = &sensor.ExecRunner{}
	}
	return &ScreenCapturer{runner: runner, goos: runtime.GOOS}
}

// Capture returns the encoded screenshot.
func (c *ScreenCapturer) Capture(ctx context.Context) ([]byte, error) {
	switch c.goos {
	case "darwin":
		return c.captureDarwin(ctx)
	case "linux":
		out, err := c.runner.Run(ctx, "import", "-window", "root", "jpg:-")
		if err != nil {
			return nil, fmt.Errorf("capture screen: %w", err)
		}
		if len(out) == 0 {
			return nil, errors.New("capture screen: empty image")
		}
		return out, nil
	default:
		return nil, ErrNoCapture
	}
}

// screencapture only writes to files.
func (c *ScreenCapturer) captureDarwin(ctx context.Context) ([]byte, error) {
	f, err := os.CreateTemp("", "omnijournal-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	defer os.Remove(path)

	if _, err := c.runner.Run(ctx, "screencapture", "-x", "-t", "jpg", path); err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	data, err := os.ReadFile(path) //nolint:gosec // temp file created above
	if err != nil {
		return nil, fmt.Errorf("capture screen: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, errors.New("capture screen: empty image")
	}
	return data, nil
}
