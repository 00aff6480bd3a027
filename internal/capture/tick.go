package capture

import (
	"context"

	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/event"
	"github.com/hindsight-sh/hindsight/internal/exclusion"
)

// tick runs one pass of the sampling pipeline. Stage failures degrade rather
// than abort: only the exclusion gate stops a tick on purpose. Nothing here
// may touch disk or the OCR engine before the gate has passed.
func (s *Scheduler) tick(ctx context.Context) {
	f := s.buffer.Take()
	if f == nil {
		// No fresh frame since the last tick; not an error, nothing recorded.
		return
	}

	fg := s.fg.CurrentForeground()

	if exclusion.Decide(fg.Name, fg.BundleID, fg.WindowTitle, s.rules()) == exclusion.Exclude {
		s.log.Debug("tick excluded by privacy rules",
			zap.Stringp("bundle_id", fg.BundleID))
		return
	}

	text, err := s.extractor.Extract(ctx, f.Image, s.mode())
	if err != nil {
		// Best-effort enrichment; the event persists without text.
		s.log.Warn("text extraction failed", zap.Error(err))
		text = nil
	}

	var shotPath *string
	if rel, err := s.store.SaveScreenshot(f.Image, f.CapturedAt); err != nil {
		// Screenshot and record persistence are independent: a blob failure
		// only costs the image, never the event.
		s.log.Warn("screenshot not persisted", zap.Error(err))
	} else {
		shotPath = &rel
	}

	id, err := event.NewID()
	if err != nil {
		s.log.Error("event id generation failed", zap.Error(err))
		return
	}

	e := &event.CaptureEvent{
		ID:               id,
		Timestamp:        f.CapturedAt.UnixMilli(),
		OCRText:          text,
		ScreenshotPath:   shotPath,
		ApplicationName:  fg.Name,
		BundleIdentifier: fg.BundleID,
	}

	if err := s.store.Save(e); err != nil {
		// The save was rolled back; capture continues on the next tick.
		s.log.Error("event not persisted", zap.Error(err))
		return
	}

	s.log.Debug("capture event persisted",
		zap.String("id", e.ID),
		zap.Bool("has_text", text != nil),
		zap.Bool("has_screenshot", shotPath != nil))
}
