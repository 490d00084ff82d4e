package vision

import (
	"errors"
	"image"
	"log"
	"sort"

	"gocv.io/x/gocv"
)

// Contour is an external boundary of a connected region in a motion mask.
type Contour struct {
	Points []image.Point
	Area   float64
}

// NewContour builds a Contour whose area is the polygon area of pts.
func NewContour(pts []image.Point) Contour {
	return Contour{
		Points: pts,
		Area:   PolygonMoments(pts).M00,
	}
}

// Region is the moving region chosen for a frame.
type Region struct {
	Area     float64
	Centroid image.Point
}

// Selector picks the dominant moving region of a motion mask.
type Selector struct {
	minArea float64
}

// NewSelector creates a Selector rejecting regions whose area is not
// strictly greater than minArea.
func NewSelector(minArea float64) *Selector {
	return &Selector{minArea: minArea}
}

// Select extracts the external contours of mask and returns the largest one.
// ok is false when nothing moved enough; a degenerate region is logged and
// reported the same way.
func (s *Selector) Select(mask MotionMask) (Region, bool) {
	if mask.Empty() {
		return Region{}, false
	}

	contours := gocv.FindContours(*mask.Mat, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	candidates := make([]Contour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		candidates = append(candidates, Contour{
			Points: pv.ToPoints(),
			Area:   gocv.ContourArea(pv),
		})
	}

	region, ok, err := SelectLargest(candidates, s.minArea)
	if err != nil {
		if errors.Is(err, ErrDegenerateRegion) {
			log.Printf("Ignoring degenerate region (area %.1f)", region.Area)
		}
		return Region{}, false
	}
	return region, ok
}

// SelectLargest ranks contours by area and returns the largest one when its
// area exceeds minArea.
//
// Contours are stably sorted by ascending area and the last one is taken,
// so among contours of exactly equal area the one extracted last wins.
func SelectLargest(contours []Contour, minArea float64) (Region, bool, error) {
	if len(contours) == 0 {
		return Region{}, false, nil
	}

	sorted := make([]Contour, len(contours))
	copy(sorted, contours)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area < sorted[j].Area
	})

	largest := sorted[len(sorted)-1]
	if largest.Area <= minArea {
		return Region{}, false, nil
	}

	region := Region{Area: largest.Area}
	centroid, err := PolygonMoments(largest.Points).Centroid()
	if err != nil {
		return region, false, err
	}
	region.Centroid = centroid

	return region, true, nil
}
