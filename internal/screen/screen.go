// Package screen provides the platform-backed capture collaborators: a frame
// stream over the display grabber, a permission probe, and foreground-window
// lookup. Everything here is replaceable through the interfaces in
// internal/capture; tests run against fakes instead.
package screen

import (
	"fmt"
	"sync"
	"time"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/event"
)

// DefaultFramePeriod is how often the stream grabs the display. Frames land
// in a latest-wins buffer, so grabbing faster than the sampling interval only
// keeps the buffered frame fresh.
const DefaultFramePeriod = 2 * time.Second

// maxConsecutiveFailures is how many grabs in a row may fail before the
// stream reports a terminal fault. Isolated failures (a display mode switch,
// a locked session) are tolerated.
const maxConsecutiveFailures = 5

// DisplayStream delivers frames from one display at a fixed cadence.
type DisplayStream struct {
	display int
	period  time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// StreamOption configures a DisplayStream.
type StreamOption func(*DisplayStream)

// WithDisplay selects a display index other than the primary.
func WithDisplay(index int) StreamOption {
	return func(s *DisplayStream) { s.display = index }
}

// WithFramePeriod overrides the grab cadence.
func WithFramePeriod(d time.Duration) StreamOption {
	return func(s *DisplayStream) {
		if d > 0 {
			s.period = d
		}
	}
}

// NewDisplayStream creates a stream over the primary display.
func NewDisplayStream(log *zap.Logger, opts ...StreamOption) *DisplayStream {
	if log == nil {
		log = zap.NewNop()
	}
	s := &DisplayStream{
		period: DefaultFramePeriod,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open validates the display and starts the grab loop. onFrame receives every
// successful grab; onError is called at most once, when the display stops
// being grabbable.
func (s *DisplayStream) Open(onFrame func(event.RawFrame), onError func(error)) error {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return fmt.Errorf("no active displays")
	}
	if s.display < 0 || s.display >= n {
		return fmt.Errorf("display %d out of range (have %d)", s.display, n)
	}

	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return fmt.Errorf("stream already open")
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.grabLoop(stopCh, doneCh, onFrame, onError)
	return nil
}

func (s *DisplayStream) grabLoop(stopCh, doneCh chan struct{}, onFrame func(event.RawFrame), onError func(error)) {
	defer close(doneCh)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			img, err := screenshot.CaptureDisplay(s.display)
			if err != nil {
				failures++
				s.log.Warn("display grab failed",
					zap.Int("display", s.display),
					zap.Int("consecutive", failures),
					zap.Error(err))
				if failures >= maxConsecutiveFailures {
					onError(fmt.Errorf("display %d unreadable after %d attempts: %w",
						s.display, failures, err))
					return
				}
				continue
			}
			failures = 0
			onFrame(event.RawFrame{Image: img, CapturedAt: time.Now()})
		}
	}
}

// Close stops the grab loop and waits for it to exit. Safe to call when the
// loop already exited on a fault, and safe to call more than once.
func (s *DisplayStream) Close() error {
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh = nil
	s.doneCh = nil
	s.mu.Unlock()

	if stopCh == nil {
		return nil
	}
	select {
	case <-stopCh:
		// already closed by a previous Close
	default:
		close(stopCh)
	}
	<-doneCh
	return nil
}
