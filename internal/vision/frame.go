// Package vision turns raw camera frames into motion candidates.
//
// A frame flows through three stages: the Preprocessor reduces it to a small
// blurred grayscale AnalysisFrame, the MotionDetector differences it against
// the previous AnalysisFrame into a binary MotionMask, and the Selector picks
// the largest moving region of the mask and reports its centroid.
package vision

import (
	"errors"

	"gocv.io/x/gocv"
)

var (
	// ErrInvalidFrame is returned for nil, empty or mismatched frames.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrDegenerateRegion is returned when a region passed the area filter
	// but has no mass to compute a centroid from.
	ErrDegenerateRegion = errors.New("degenerate region")
)

// AnalysisFrame is a single channel, square, blurred frame.
// It owns its Mat; call Close when it is no longer needed.
type AnalysisFrame struct {
	Mat *gocv.Mat
}

// Empty reports whether the frame holds no pixels.
func (f AnalysisFrame) Empty() bool {
	return f.Mat == nil || f.Mat.Empty()
}

// Size returns the frame width and height in pixels.
func (f AnalysisFrame) Size() (int, int) {
	if f.Empty() {
		return 0, 0
	}
	return f.Mat.Cols(), f.Mat.Rows()
}

// Close releases the underlying Mat.
func (f AnalysisFrame) Close() error {
	if f.Mat == nil {
		return nil
	}
	return f.Mat.Close()
}

// MotionMask is a binary (0/255) single channel image of moving pixels.
type MotionMask struct {
	Mat *gocv.Mat
}

// Empty reports whether the mask holds no pixels.
func (m MotionMask) Empty() bool {
	return m.Mat == nil || m.Mat.Empty()
}

// Close releases the underlying Mat.
func (m MotionMask) Close() error {
	if m.Mat == nil {
		return nil
	}
	return m.Mat.Close()
}
