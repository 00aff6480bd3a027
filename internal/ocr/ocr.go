// Package ocr turns screen samples into text. Extraction is best-effort
// enrichment: a failed or empty pass never blocks the capture pipeline, the
// event is simply persisted without text.
package ocr

import (
	"context"
	"image"
)

// Mode selects the recognition trade-off. The mode is read once per call so
// a config edit switches modes live, between ticks.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeAccurate Mode = "accurate"
)

// ParseMode maps a config string to a Mode, defaulting to accurate.
func ParseMode(s string) Mode {
	if s == string(ModeFast) {
		return ModeFast
	}
	return ModeAccurate
}

// Extractor produces text from a raw frame image.
//
// The returned pointer is nil when recognition yields zero regions; that is
// distinct from an empty string and callers must preserve the difference.
// A non-nil error means the extraction itself failed; callers log it and
// degrade to a text-less event.
type Extractor interface {
	Extract(ctx context.Context, img image.Image, mode Mode) (*string, error)
}
