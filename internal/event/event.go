package event

import (
	"crypto/rand"
	"image"
	"time"

	"github.com/oklog/ulid/v2"
)

// CaptureEvent is one persisted sample of the screen: what was visible, in
// which application, at what instant. Events are immutable once written.
type CaptureEvent struct {
	// ID is a ULID that uniquely identifies this event
	ID string `json:"id"`

	// Timestamp is the capture instant in Unix milliseconds; used for ordering
	Timestamp int64 `json:"timestamp"`

	// OCRText is the extracted text. nil means extraction found nothing (or
	// failed); it is distinct from an empty string and must stay that way.
	OCRText *string `json:"ocr_text,omitempty"`

	// ScreenshotPath is the blob path relative to the screenshots root.
	// nil when image persistence failed; the event is still worth keeping.
	ScreenshotPath *string `json:"screenshot_path,omitempty"`

	// ApplicationName is the foreground application's display name (nullable)
	ApplicationName *string `json:"app_name,omitempty"`

	// BundleIdentifier is the foreground application's bundle id (nullable)
	BundleIdentifier *string `json:"bundle_id,omitempty"`
}

// RawFrame is an in-flight screen sample. It is owned by exactly one stage at
// a time: stream callback, then buffer, then the tick that consumed it.
type RawFrame struct {
	Image      image.Image
	CapturedAt time.Time
}

// NewID generates a ULID for a capture event.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
