package screen

import (
	"os"
	"runtime"

	"github.com/kbinani/screenshot"
)

// Permissions probes whether the display is grabbable. The probe is cheap and
// side-effect free, so callers query it on every start rather than caching.
type Permissions struct{}

// Authorized reports whether a display grab would succeed. On Linux an empty
// DISPLAY/WAYLAND_DISPLAY environment means no session to capture at all;
// everywhere the final word is whether the grabber sees an active display.
func (Permissions) Authorized() bool {
	if runtime.GOOS == "linux" &&
		os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	return screenshot.NumActiveDisplays() > 0
}
