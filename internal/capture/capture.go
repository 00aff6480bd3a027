// Package capture owns the sampling lifecycle: a state machine around the
// periodic tick that pulls the freshest frame, gates it on the exclusion
// rules, extracts text, and persists the result. The capture stream, the
// permission check, and foreground-app lookup are external collaborators
// behind small interfaces so the pipeline is testable without a display.
package capture

import (
	"context"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/config"
	"github.com/hindsight-sh/hindsight/internal/errors"
	"github.com/hindsight-sh/hindsight/internal/event"
	"github.com/hindsight-sh/hindsight/internal/exclusion"
	"github.com/hindsight-sh/hindsight/internal/frame"
	"github.com/hindsight-sh/hindsight/internal/ocr"
)

// ForegroundApp identifies the application owning the screen at tick time.
// All fields are nullable; the platform may not know any of them.
type ForegroundApp struct {
	Name        *string
	BundleID    *string
	WindowTitle *string
}

// Stream is the capture-stream collaborator. Open starts frame delivery:
// the stream invokes onFrame for every delivered frame on its own goroutine
// and onError at most once, on terminal failure. Close stops delivery and is
// safe to call after a terminal failure.
type Stream interface {
	Open(onFrame func(event.RawFrame), onError func(error)) error
	Close() error
}

// PermissionChecker reports whether screen capture is authorized. Queried
// synchronously on every Start, never cached.
type PermissionChecker interface {
	Authorized() bool
}

// ForegroundProvider resolves the current foreground application, queried
// once per tick before the exclusion decision.
type ForegroundProvider interface {
	CurrentForeground() ForegroundApp
}

// Saver is the persistence slice of the event store the scheduler needs.
type Saver interface {
	Save(e *event.CaptureEvent) error
	SaveScreenshot(img image.Image, capturedAt time.Time) (string, error)
}

// Options wires a Scheduler.
type Options struct {
	Stream      Stream
	Permissions PermissionChecker
	Foreground  ForegroundProvider
	Extractor   ocr.Extractor
	Store       Saver

	// Rules is called once per tick so rule edits apply between ticks.
	Rules func() exclusion.RuleSet

	// Mode is called once per extraction so mode edits apply live.
	Mode func() ocr.Mode

	// Interval is the initial tick period. Callers pass a clamped value;
	// tests may use shorter periods.
	Interval time.Duration

	Logger *zap.Logger
}

// Scheduler runs the capture tick pipeline.
type Scheduler struct {
	stream    Stream
	perms     PermissionChecker
	fg        ForegroundProvider
	extractor ocr.Extractor
	store     Saver
	rules     func() exclusion.RuleSet
	mode      func() ocr.Mode
	log       *zap.Logger

	buffer   *frame.Buffer
	statusCh chan Status

	mu       sync.Mutex
	state    State
	interval time.Duration

	// Per-run channels, created by Start.
	stopCh     chan struct{}
	doneCh     chan struct{}
	faultCh    chan error
	intervalCh chan time.Duration
	opened     bool
}

// New creates a scheduler in the Idle state.
func New(opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rules == nil {
		opts.Rules = func() exclusion.RuleSet { return exclusion.RuleSet{} }
	}
	if opts.Mode == nil {
		opts.Mode = func() ocr.Mode { return ocr.ModeAccurate }
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Duration(config.ClampInterval(0)) * time.Second
	}
	return &Scheduler{
		stream:    opts.Stream,
		perms:     opts.Permissions,
		fg:        opts.Foreground,
		extractor: opts.Extractor,
		store:     opts.Store,
		rules:     opts.Rules,
		mode:      opts.Mode,
		log:       opts.Logger,
		buffer:    frame.NewBuffer(),
		statusCh:  make(chan Status, 8),
		state:     StateIdle,
		interval:  opts.Interval,
	}
}

// Events exposes the status channel. Transitions are delivered best-effort:
// a slow subscriber loses intermediate states rather than stalling capture.
func (s *Scheduler) Events() <-chan Status {
	return s.statusCh
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Interval returns the current tick period in seconds.
func (s *Scheduler) Interval() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval.Seconds()
}

// Start checks permission, opens the capture stream, and arms the periodic
// tick. No-op when not Idle. Fails with PERMISSION_DENIED when the permission
// collaborator reports not-authorized; a stream setup failure releases
// everything acquired so far and lands back in Idle with the error reported.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	s.setStateLocked(StateStarting, nil)
	s.mu.Unlock()

	// Checked synchronously on every Start; authorization can be revoked
	// between runs.
	if !s.perms.Authorized() {
		err := errors.NewPermissionDenied()
		s.mu.Lock()
		s.setStateLocked(StateIdle, err)
		s.mu.Unlock()
		return err
	}

	faultCh := make(chan error, 1)
	onFrame := func(f event.RawFrame) { s.buffer.Publish(f) }
	onError := func(err error) {
		select {
		case faultCh <- err:
		default:
		}
	}

	if err := s.stream.Open(onFrame, onError); err != nil {
		wrapped := errors.NewStreamSetup(err)
		s.log.Warn("capture stream setup failed", zap.Error(err))
		s.mu.Lock()
		s.setStateLocked(StateIdle, wrapped)
		s.mu.Unlock()
		return wrapped
	}

	s.mu.Lock()
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.faultCh = faultCh
	s.intervalCh = make(chan time.Duration, 1)
	s.opened = true
	interval := s.interval
	stopCh, doneCh, intervalCh := s.stopCh, s.doneCh, s.intervalCh
	s.setStateLocked(StateRunning, nil)
	s.mu.Unlock()

	s.log.Info("capture started", zap.Duration("interval", interval))
	go s.run(interval, stopCh, doneCh, faultCh, intervalCh)
	return nil
}

// Stop disarms the tick, closes the stream, and discards any buffered frame.
// Idempotent no-op when not Running. An in-flight tick runs to completion;
// its event, if any, is still persisted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(StateStopping, nil)
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	s.cleanup()
	s.log.Info("capture stopped")
}

// SetInterval changes the tick period, clamped to [1,300] seconds. While
// Running the ticker is re-armed atomically without leaving Running; the
// loop owns the ticker, so two periods are never armed at once.
func (s *Scheduler) SetInterval(seconds float64) {
	d := time.Duration(config.ClampInterval(seconds) * float64(time.Second))

	s.mu.Lock()
	s.interval = d
	running := s.state == StateRunning
	intervalCh := s.intervalCh
	s.mu.Unlock()

	if !running || intervalCh == nil {
		return
	}
	// Replace any pending value so the loop always applies the newest period.
	select {
	case intervalCh <- d:
	default:
		select {
		case <-intervalCh:
		default:
		}
		intervalCh <- d
	}
}

// run is the scheduler's own task: it owns the ticker and executes ticks
// sequentially, so at most one tick pipeline is in flight.
func (s *Scheduler) run(interval time.Duration, stopCh, doneCh chan struct{}, faultCh chan error, intervalCh chan time.Duration) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case d := <-intervalCh:
			ticker.Reset(d)
		case err := <-faultCh:
			s.faulted(err)
			return
		case <-ticker.C:
			s.tick(context.Background())
		}
	}
}

// faulted handles a terminal stream error: an observable Faulted transition,
// then the same cleanup as Stop, landing in Idle. Never a crash.
func (s *Scheduler) faulted(err error) {
	wrapped := errors.NewStreamFaulted(err)
	s.log.Error("capture stream faulted", zap.Error(err))
	s.mu.Lock()
	s.setStateLocked(StateFaulted, wrapped)
	s.mu.Unlock()
	s.cleanup()
}

// cleanup closes the stream, discards any unconsumed frame, and returns to
// Idle. Safe to call once per run from either the stop or the fault path.
func (s *Scheduler) cleanup() {
	s.mu.Lock()
	opened := s.opened
	s.opened = false
	s.intervalCh = nil
	s.mu.Unlock()

	if opened {
		if err := s.stream.Close(); err != nil {
			s.log.Warn("capture stream close failed", zap.Error(err))
		}
	}
	s.buffer.Take()

	s.mu.Lock()
	s.setStateLocked(StateIdle, nil)
	s.mu.Unlock()
}

// setStateLocked transitions state and emits a status event. Callers hold mu.
func (s *Scheduler) setStateLocked(state State, err error) {
	s.state = state
	select {
	case s.statusCh <- Status{State: state, Err: err}:
	default:
	}
}
