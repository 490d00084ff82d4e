package track

import (
	"time"

	"gocv.io/x/gocv"
)

// Report summarizes a finished session.
type Report struct {
	FrameCount     int     `json:"frame_count"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	FPS            float64 `json:"fps"`
}

// Point is one recorded entry of a track.
type Point struct {
	Position
	// Detected is false when the position was carried over from the
	// previous frame because no motion was found.
	Detected bool `json:"detected"`
}

// Recorder accumulates the track of a session and, optionally, the
// annotated frames that go with it.
type Recorder struct {
	points     []Point
	frames     []gocv.Mat
	keepFrames bool
}

// NewRecorder creates a Recorder. Capacity is a hint for the expected
// number of positions.
func NewRecorder(capacity int, keepFrames bool) *Recorder {
	if capacity < 0 {
		capacity = 0
	}
	return &Recorder{
		points:     make([]Point, 0, capacity),
		keepFrames: keepFrames,
	}
}

// Record appends a position to the track.
func (r *Recorder) Record(pos Position, detected bool) {
	r.points = append(r.points, Point{Position: pos, Detected: detected})
}

// KeepsFrames reports whether annotated frames are retained.
func (r *Recorder) KeepsFrames() bool {
	return r.keepFrames
}

// AddFrame takes ownership of an annotated frame. It is closed
// immediately when frames are not being kept.
func (r *Recorder) AddFrame(frame gocv.Mat) {
	if !r.keepFrames {
		frame.Close()
		return
	}
	r.frames = append(r.frames, frame)
}

// Track returns the recorded positions in order.
func (r *Recorder) Track() []Position {
	out := make([]Position, len(r.points))
	for i, p := range r.points {
		out[i] = p.Position
	}
	return out
}

// Points returns the recorded entries in order.
func (r *Recorder) Points() []Point {
	out := make([]Point, len(r.points))
	copy(out, r.points)
	return out
}

// Frames returns the retained annotated frames.
func (r *Recorder) Frames() []gocv.Mat {
	return r.frames
}

// Len returns the number of recorded positions.
func (r *Recorder) Len() int {
	return len(r.points)
}

// Finalize computes the throughput for the recorded track.
// A zero or negative elapsed time yields an FPS of 0.
func (r *Recorder) Finalize(elapsed time.Duration) Report {
	report := Report{
		FrameCount:     len(r.points),
		ElapsedSeconds: elapsed.Seconds(),
	}
	if report.ElapsedSeconds > 0 {
		report.FPS = float64(report.FrameCount) / report.ElapsedSeconds
	}
	return report
}

// Close releases any retained frames.
func (r *Recorder) Close() {
	for i := range r.frames {
		r.frames[i].Close()
	}
	r.frames = nil
}
