package store

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/errors"
)

// ScreenshotFilename derives the blob name from the capture instant at
// millisecond resolution. With the supported sampling cadence (>= 1s between
// ticks) this is unique by construction.
func ScreenshotFilename(capturedAt time.Time) string {
	return fmt.Sprintf("%d.png", capturedAt.UnixMilli())
}

// SaveScreenshot encodes img as PNG under the screenshots root and returns
// the relative blob path. The write goes through a temp file and rename so a
// failed encode never leaves a partial blob; on failure the temp file is
// removed and an IMAGE_ENCODE error is returned. Callers treat that as
// degradation, not tick failure: the event is still saved without a path.
func (s *Store) SaveScreenshot(img image.Image, capturedAt time.Time) (string, error) {
	name := ScreenshotFilename(capturedAt)
	finalPath := filepath.Join(s.shotsDir, name)

	tmp, err := os.CreateTemp(s.shotsDir, name+".tmp-*")
	if err != nil {
		return "", errors.NewImageEncode(err)
	}
	tmpPath := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", errors.NewImageEncode(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", errors.NewImageEncode(err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", errors.NewImageEncode(err)
	}
	_ = os.Chmod(finalPath, 0600)

	s.log.Debug("screenshot written", zap.String("path", name))
	return name, nil
}
