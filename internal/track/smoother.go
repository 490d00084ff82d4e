// Package track smooths per-frame centroids and records the resulting track.
package track

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// Center is the value every window slot holds before real data arrives.
const Center = 0.5

// Position is a normalized coordinate in [0,1]x[0,1].
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Normalize converts a pixel coordinate into a Position relative to a
// w x h frame. Out-of-range coordinates are clamped.
func Normalize(p image.Point, w, h int) Position {
	return Position{
		X: clamp(float64(p.X) / float64(w)),
		Y: clamp(float64(p.Y) / float64(h)),
	}
}

// Pixel maps a Position back onto a w x h frame.
func (p Position) Pixel(w, h int) image.Point {
	return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Window is a fixed-capacity FIFO of samples. It always holds exactly
// its capacity worth of values.
type Window struct {
	values []float64
	next   int
}

// NewWindow creates a window of size n with every slot set to fill.
func NewWindow(n int, fill float64) *Window {
	if n < 1 {
		n = 1
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = fill
	}
	return &Window{values: values}
}

// Push evicts the oldest sample and stores v.
func (w *Window) Push(v float64) {
	w.values[w.next] = v
	w.next = (w.next + 1) % len(w.values)
}

// Mean returns the arithmetic mean of the window.
func (w *Window) Mean() float64 {
	return stat.Mean(w.values, nil)
}

// Len returns the window capacity.
func (w *Window) Len() int {
	return len(w.values)
}

// Values returns the samples from oldest to newest.
func (w *Window) Values() []float64 {
	out := make([]float64, 0, len(w.values))
	out = append(out, w.values[w.next:]...)
	return append(out, w.values[:w.next]...)
}

// Smoother reports the moving average of recent positions per axis.
// When a frame has no candidate the previous average is repeated.
type Smoother struct {
	xs      *Window
	ys      *Window
	average Position
}

// NewSmoother creates a Smoother whose windows hold n samples each.
func NewSmoother(n int) *Smoother {
	s := &Smoother{
		xs: NewWindow(n, Center),
		ys: NewWindow(n, Center),
	}
	s.average = Position{X: s.xs.Mean(), Y: s.ys.Mean()}
	return s
}

// Update folds candidate into the windows and returns the new average.
// A nil candidate leaves the windows untouched.
func (s *Smoother) Update(candidate *Position) Position {
	if candidate == nil {
		return s.average
	}

	s.xs.Push(candidate.X)
	s.ys.Push(candidate.Y)
	s.average = Position{X: s.xs.Mean(), Y: s.ys.Mean()}

	return s.average
}

// Average returns the most recently emitted position.
func (s *Smoother) Average() Position {
	return s.average
}
