// Package frame provides the single-slot hand-off between the capture stream
// and the sampling scheduler. The stream publishes at its own cadence; the
// scheduler takes at tick cadence. Only the newest frame matters, so the slot
// overwrites unconditionally and memory stays O(1) at any stream throughput.
package frame

import (
	"sync"

	"github.com/hindsight-sh/hindsight/internal/event"
)

// Buffer holds at most one frame. Latest-wins: an unconsumed frame is
// silently replaced by the next Publish. This is the intended backpressure
// policy, not a dropped-data bug.
type Buffer struct {
	mu   sync.Mutex
	slot *event.RawFrame
}

// NewBuffer creates an empty single-slot buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Publish stores frame, discarding any unconsumed previous frame.
func (b *Buffer) Publish(f event.RawFrame) {
	b.mu.Lock()
	b.slot = &f
	b.mu.Unlock()
}

// Take removes and returns the current frame, or nil if the slot is empty
// (the stream has not delivered since the last Take).
func (b *Buffer) Take() *event.RawFrame {
	b.mu.Lock()
	f := b.slot
	b.slot = nil
	b.mu.Unlock()
	return f
}
