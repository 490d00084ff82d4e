package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// DilateIterations is how many times the thresholded difference is dilated.
const DilateIterations = 4

// MotionDetector builds a motion mask from two consecutive analysis frames
// using frame differencing.
type MotionDetector struct {
	threshold float32
	kernel    gocv.Mat
}

// NewMotionDetector creates a MotionDetector. A pixel is considered moving
// when its absolute difference is strictly greater than threshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: float32(threshold),
		kernel:    gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
	}
}

// Detect computes the motion mask between current and previous.
//
// Algorithm:
// 1. Absolute per-pixel difference of the two frames
// 2. Binary threshold: diff > threshold becomes 255, everything else 0
// 3. Dilate 4 times with a 3x3 rectangle to merge fragments
//
// The caller owns the returned mask.
func (m *MotionDetector) Detect(current, previous AnalysisFrame) (MotionMask, error) {
	if current.Empty() || previous.Empty() {
		return MotionMask{}, ErrInvalidFrame
	}

	cw, ch := current.Size()
	pw, ph := previous.Size()
	if cw != pw || ch != ph || current.Mat.Type() != previous.Mat.Type() {
		return MotionMask{}, fmt.Errorf("%w: frame %dx%d does not match previous %dx%d", ErrInvalidFrame, cw, ch, pw, ph)
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(*current.Mat, *previous.Mat, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, m.threshold, 255, gocv.ThresholdBinary)

	mask := gocv.NewMat()
	gocv.DilateWithParams(thresh, &mask, m.kernel, image.Pt(-1, -1), DilateIterations, gocv.BorderConstant, color.RGBA{})

	return MotionMask{Mat: &mask}, nil
}

// Close releases resources used by the motion detector.
func (m *MotionDetector) Close() {
	if !m.kernel.Empty() {
		m.kernel.Close()
		m.kernel = gocv.NewMat()
	}
}
