package vision

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// filledMask returns a size x size binary mask with the given pixel boxes
// set to 255. Box corners are inclusive.
func filledMask(t *testing.T, size int, boxes ...image.Rectangle) MotionMask {
	t.Helper()

	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), size, size, gocv.MatTypeCV8U)
	for _, b := range boxes {
		for y := b.Min.Y; y <= b.Max.Y; y++ {
			for x := b.Min.X; x <= b.Max.X; x++ {
				m.SetUCharAt(y, x, 255)
			}
		}
	}
	t.Cleanup(func() { m.Close() })

	return MotionMask{Mat: &m}
}

// colorFrame returns a BGR frame of the given size with an optional bright box.
func colorFrame(t *testing.T, rows, cols int, box image.Rectangle) *gocv.Mat {
	t.Helper()

	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
	if !box.Empty() {
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				m.SetUCharAt(y, x*3, 255)
				m.SetUCharAt(y, x*3+1, 255)
				m.SetUCharAt(y, x*3+2, 255)
			}
		}
	}
	t.Cleanup(func() { m.Close() })

	return &m
}
