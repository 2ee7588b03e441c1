// Package session turns the frame stream of a rig into a plottable time series.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/itohio/gospeed/pkg/frame"
)

// Point is a frame placed on the session time axis.
type Point struct {
	Time     time.Duration // since the session origin
	Distance float64       // cm
	Speed    float64       // cm/s
}

// UpdateFunc receives a snapshot of the buffered points and the number of
// time-base resets seen so far.
type UpdateFunc func(points []Point, resets int)

// Session buffers received frames relative to a time origin.
//
// The first frame's elapsed time becomes the origin. A frame that would land
// before the origin means the controller clock restarted (reboot, reconnection
// or counter wrap): the session drops everything and starts over with that
// frame as the new origin.
type Session struct {
	window time.Duration

	mu        sync.RWMutex
	origin    int64
	hasOrigin bool
	points    []Point // ordered oldest first, trimmed by time window
	resets    int

	callbacks []UpdateFunc
	cbMu      sync.RWMutex

	// Set to true when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a session keeping points no older than window behind the latest one.
// A zero window keeps everything.
func New(window time.Duration) *Session {
	return &Session{
		window: window,
		points: make([]Point, 0),
	}
}

// Process consumes frames until the channel closes.
// When the input channel closes, it sets shutdown flag to prevent further callbacks.
func (s *Session) Process(input <-chan frame.Frame) {
	for f := range input {
		if s.add(f) {
			log.Printf("Controller clock restarted, new session origin at %d ms", f.ElapsedMs)
		}
		s.mu.RLock()
		shouldNotify := !s.shutdown
		s.mu.RUnlock()
		if shouldNotify {
			s.notifyCallbacks()
		}
	}
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
}

// add places a frame on the time axis and reports whether it reset the session.
func (s *Session) add(f frame.Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasOrigin {
		s.origin = f.ElapsedMs
		s.hasOrigin = true
	}

	elapsed := f.ElapsedMs - s.origin
	reset := false
	if elapsed < 0 {
		s.points = s.points[:0]
		s.origin = f.ElapsedMs
		s.resets++
		elapsed = 0
		reset = true
	}

	p := Point{
		Time:     time.Duration(elapsed) * time.Millisecond,
		Distance: f.Distance,
		Speed:    f.Speed,
	}
	s.points = append(s.points, p)

	// Remove points outside the time window (based on time, not count)
	if s.window > 0 {
		cutoff := p.Time - s.window
		cutoffIndex := 0
		for cutoffIndex < len(s.points) && s.points[cutoffIndex].Time < cutoff {
			cutoffIndex++
		}
		if cutoffIndex > 0 {
			s.points = append(s.points[:0], s.points[cutoffIndex:]...)
		}
	}

	return reset
}

// SetWindow changes the time window; it applies from the next frame on.
func (s *Session) SetWindow(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = window
}

// Points returns a copy of the buffered points.
func (s *Session) Points() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Point, len(s.points))
	copy(result, s.points)
	return result
}

// Origin returns the controller time (ms) that maps to zero, and whether one is set.
func (s *Session) Origin() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin, s.hasOrigin
}

// Resets returns how many time-base resets the session went through.
func (s *Session) Resets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resets
}

// Clear drops all points and the origin; the next frame starts a fresh session.
func (s *Session) Clear() {
	s.mu.Lock()
	s.points = s.points[:0]
	s.hasOrigin = false
	s.origin = 0
	s.mu.Unlock()

	s.notifyCallbacks()
}

// OnUpdate registers a callback invoked after every processed frame.
// The callback should copy data quickly and return as fast as possible.
func (s *Session) OnUpdate(callback UpdateFunc) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before starting a new processing chain.
func (s *Session) ResetShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with current data.
// Makes copies of data while holding read lock, then calls callbacks without lock.
func (s *Session) notifyCallbacks() {
	s.mu.RLock()
	points := make([]Point, len(s.points))
	copy(points, s.points)
	resets := s.resets
	s.mu.RUnlock()

	s.cbMu.RLock()
	callbacks := make([]UpdateFunc, len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(points, resets)
		}
	}
}
