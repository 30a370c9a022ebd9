// Package temporal - Bounded sliding windows over recent frame history.
//
// The pipeline smooths per-frame signals (motion intensity, vehicle
// counts) over short windows and keeps a handful of recent frames for
// differencing. All of that history lives here so the window sizes stay
// consistent across the pipeline; no other package appends to or trims
// these buffers.
package temporal

import "gocv.io/x/gocv"

const (
	// FrameWindowSize is the number of recent frames retained.
	FrameWindowSize = 10
	// MotionWindowSize is the number of motion samples averaged.
	MotionWindowSize = 5
	// VehicleWindowSize is the number of vehicle-count snapshots retained.
	VehicleWindowSize = 10
)

// Window is a fixed-capacity FIFO: pushing past capacity evicts the
// oldest entry.
type Window[T any] struct {
	entries  []T
	capacity int
}

// NewWindow creates a window with the given capacity.
func NewWindow[T any](capacity int) *Window[T] {
	return &Window[T]{capacity: capacity}
}

// Push appends a value, returning the evicted oldest entry when the
// window was full.
func (w *Window[T]) Push(v T) (evicted T, wasFull bool) {
	if len(w.entries) == w.capacity {
		evicted = w.entries[0]
		wasFull = true
		copy(w.entries, w.entries[1:])
		w.entries[len(w.entries)-1] = v
		return evicted, wasFull
	}
	w.entries = append(w.entries, v)
	return evicted, false
}

// Len returns the number of buffered entries.
func (w *Window[T]) Len() int { return len(w.entries) }

// At returns the i-th oldest entry.
func (w *Window[T]) At(i int) T { return w.entries[i] }

// Last returns the newest entry; ok is false when empty.
func (w *Window[T]) Last() (v T, ok bool) {
	if len(w.entries) == 0 {
		return v, false
	}
	return w.entries[len(w.entries)-1], true
}

// State owns the pipeline's temporal buffers. It is bound to a single
// pipeline instance and must not be shared across streams.
type State struct {
	frames   *Window[gocv.Mat]
	motion   *Window[float64]
	vehicles *Window[int]
}

// NewState creates the three windows at their fixed capacities.
func NewState() *State {
	return &State{
		frames:   NewWindow[gocv.Mat](FrameWindowSize),
		motion:   NewWindow[float64](MotionWindowSize),
		vehicles: NewWindow[int](VehicleWindowSize),
	}
}

// PushFrame buffers a clone of the frame. The caller keeps ownership of
// the original; evicted clones are released here.
func (s *State) PushFrame(frame gocv.Mat) {
	if frame.Empty() {
		return
	}
	if evicted, wasFull := s.frames.Push(frame.Clone()); wasFull {
		evicted.Close()
	}
}

// PushMotion appends a motion intensity sample.
func (s *State) PushMotion(v float64) {
	s.motion.Push(v)
}

// PushVehicles appends a vehicle-count snapshot.
func (s *State) PushVehicles(count int) {
	s.vehicles.Push(count)
}

// AverageMotion returns the arithmetic mean of the motion window, 0 when
// no samples are buffered.
func (s *State) AverageMotion() float64 {
	n := s.motion.Len()
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.motion.At(i)
	}
	return sum / float64(n)
}

// FrameCount returns the number of buffered frames.
func (s *State) FrameCount() int { return s.frames.Len() }

// PreviousFrame returns the most recently buffered frame, which for the
// pipeline's call order is the frame preceding the one currently being
// processed. The returned Mat stays owned by the state.
func (s *State) PreviousFrame() (gocv.Mat, bool) {
	return s.frames.Last()
}

// Close releases every buffered frame clone.
func (s *State) Close() {
	for i := 0; i < s.frames.Len(); i++ {
		m := s.frames.At(i)
		m.Close()
	}
	s.frames = NewWindow[gocv.Mat](FrameWindowSize)
}
