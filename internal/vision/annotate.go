package vision

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// MarkerRadius is the radius of the dot drawn at the tracked position.
const MarkerRadius = 4

// Red is the marker color.
var Red = color.RGBA{R: 255}

// Annotate renders the mask in color with a filled dot at pos.
// The caller owns the returned Mat. Nothing is allocated on error.
func Annotate(mask MotionMask, pos image.Point) (gocv.Mat, error) {
	if mask.Empty() {
		return gocv.Mat{}, ErrInvalidFrame
	}

	out := gocv.NewMat()
	gocv.CvtColor(*mask.Mat, &out, gocv.ColorGrayToBGR)
	gocv.Circle(&out, pos, MarkerRadius, Red, -1)

	return out, nil
}

// WriteFrames writes frames to dir as <prefix>_NNNN.ppm.
func WriteFrames(dir, prefix string, frames []gocv.Mat) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create frame directory: %w", err)
	}

	for i, frame := range frames {
		name := filepath.Join(dir, fmt.Sprintf("%s_%04d.ppm", prefix, i))
		if ok := gocv.IMWrite(name, frame); !ok {
			return fmt.Errorf("failed to write frame %s", name)
		}
	}

	return nil
}
