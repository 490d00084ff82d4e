package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Preprocessor normalizes raw camera frames into AnalysisFrames.
type Preprocessor struct {
	size int
	blur int
}

// NewPreprocessor creates a Preprocessor producing size x size frames
// blurred with a blur x blur Gaussian kernel. blur must be odd.
func NewPreprocessor(size, blur int) *Preprocessor {
	return &Preprocessor{
		size: size,
		blur: blur,
	}
}

// Normalize scales, grays and blurs a raw frame.
//
// Steps:
// 1. Resize to size x size with linear interpolation
// 2. Convert to grayscale (single channel input is copied as is)
// 3. Gaussian blur to suppress sensor noise before differencing
//
// The raw frame is left untouched. The caller owns the returned frame.
func (p *Preprocessor) Normalize(raw *gocv.Mat) (AnalysisFrame, error) {
	if raw == nil || raw.Empty() {
		return AnalysisFrame{}, ErrInvalidFrame
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(*raw, &resized, image.Pt(p.size, p.size), 0, 0, gocv.InterpolationLinear)

	gray := gocv.NewMat()
	defer gray.Close()

	switch resized.Channels() {
	case 1:
		resized.CopyTo(&gray)
	case 3:
		gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(resized, &gray, gocv.ColorBGRAToGray)
	default:
		return AnalysisFrame{}, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidFrame, resized.Channels())
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Pt(p.blur, p.blur), 0, 0, gocv.BorderDefault)

	return AnalysisFrame{Mat: &blurred}, nil
}
