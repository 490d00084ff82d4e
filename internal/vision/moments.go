package vision

import "image"

// Moments holds the spatial moments of a closed polygon up to first order.
type Moments struct {
	M00 float64
	M10 float64
	M01 float64
}

// PolygonMoments computes the moments of the polygon traced by pts using
// Green's theorem, matching OpenCV's contour moments. The result is
// orientation independent: M00 is never negative.
func PolygonMoments(pts []image.Point) Moments {
	n := len(pts)
	if n < 3 {
		return Moments{}
	}

	var a00, a10, a01 float64

	prev := pts[n-1]
	for _, p := range pts {
		xp, yp := float64(prev.X), float64(prev.Y)
		x, y := float64(p.X), float64(p.Y)

		dxy := xp*y - x*yp
		a00 += dxy
		a10 += dxy * (xp + x)
		a01 += dxy * (yp + y)

		prev = p
	}

	m := Moments{
		M00: a00 / 2,
		M10: a10 / 6,
		M01: a01 / 6,
	}
	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Centroid returns the truncated integer centroid.
// It fails with ErrDegenerateRegion when the polygon has no area.
func (m Moments) Centroid() (image.Point, error) {
	if m.M00 == 0 {
		return image.Point{}, ErrDegenerateRegion
	}
	return image.Pt(int(m.M10/m.M00), int(m.M01/m.M00)), nil
}
