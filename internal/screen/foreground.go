package screen

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/capture"
)

// lookupTimeout bounds each window-manager query. A wedged X server must not
// stall the tick pipeline.
const lookupTimeout = 2 * time.Second

// Foreground resolves the active window via xdotool and xprop. Both tools are
// optional: when either is missing or fails, the lookup degrades to an empty
// result and the capture event simply carries no application fields.
type Foreground struct {
	log *zap.Logger
}

// NewForeground creates an X11 foreground-window resolver.
func NewForeground(log *zap.Logger) *Foreground {
	if log == nil {
		log = zap.NewNop()
	}
	return &Foreground{log: log}
}

// CurrentForeground returns whatever the window manager knows about the
// active window. Every field is best-effort and may be nil.
func (f *Foreground) CurrentForeground() capture.ForegroundApp {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	winID, err := run(ctx, "xdotool", "getactivewindow")
	if err != nil || winID == "" {
		f.log.Debug("active window lookup failed", zap.Error(err))
		return capture.ForegroundApp{}
	}

	var app capture.ForegroundApp

	if title, err := run(ctx, "xdotool", "getwindowname", winID); err == nil && title != "" {
		app.WindowTitle = &title
	}

	if out, err := run(ctx, "xprop", "-id", winID, "WM_CLASS"); err == nil {
		instance, class := parseWMClass(out)
		if class != "" {
			app.Name = &class
		}
		if instance != "" {
			app.BundleID = &instance
		}
	}

	return app
}

func run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// parseWMClass extracts the instance and class names from an xprop WM_CLASS
// line, e.g. `WM_CLASS(STRING) = "navigator", "Firefox"`.
func parseWMClass(out string) (instance, class string) {
	_, after, ok := strings.Cut(out, "=")
	if !ok {
		return "", ""
	}
	parts := strings.Split(after, ",")
	unquote := func(s string) string {
		return strings.Trim(strings.TrimSpace(s), `"`)
	}
	if len(parts) > 0 {
		instance = unquote(parts[0])
	}
	if len(parts) > 1 {
		class = unquote(parts[1])
	}
	return instance, class
}
