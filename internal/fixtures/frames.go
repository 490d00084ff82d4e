// Package fixtures builds synthetic camera frames for tests.
package fixtures

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Default fixture frame dimensions, matching the camera defaults.
const (
	Width  = 640
	Height = 480
)

// White is the colour of the moving object.
var White = color.RGBA{R: 255, G: 255, B: 255}

// Blank returns a black BGR frame.
func Blank(rows, cols int) *gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
	return &m
}

// Square returns a black BGR frame with a filled white rectangle.
func Square(rows, cols int, r image.Rectangle) *gocv.Mat {
	m := Blank(rows, cols)
	gocv.Rectangle(m, r, White, -1)
	return m
}

// MovingSquare returns n frames of a side x side square travelling
// step pixels to the right each frame, starting at from.
func MovingSquare(n, side, step int, from image.Point) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		origin := from.Add(image.Pt(i*step, 0))
		frames = append(frames, Square(Height, Width, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(side, side))}))
	}
	return frames
}

// Still returns n identical black frames.
func Still(n int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, Blank(Height, Width))
	}
	return frames
}

// SingleEvent returns n frames where an object appears at frame k and
// then stays put, so motion is seen exactly once.
func SingleEvent(n, k int, r image.Rectangle) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		if i < k {
			frames = append(frames, Blank(Height, Width))
			continue
		}
		frames = append(frames, Square(Height, Width, r))
	}
	return frames
}

// Close releases every frame.
func Close(frames []*gocv.Mat) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
