package vision

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonMoments(t *testing.T) {
	tests := []struct {
		name         string
		pts          []image.Point
		wantArea     float64
		wantCentroid image.Point
	}{
		{
			name:         "clockwise rectangle",
			pts:          []image.Point{{10, 10}, {30, 10}, {30, 25}, {10, 25}},
			wantArea:     300,
			wantCentroid: image.Pt(20, 17),
		},
		{
			name:         "counter clockwise rectangle",
			pts:          []image.Point{{10, 10}, {10, 25}, {30, 25}, {30, 10}},
			wantArea:     300,
			wantCentroid: image.Pt(20, 17),
		},
		{
			name:         "right triangle",
			pts:          []image.Point{{0, 0}, {30, 0}, {0, 30}},
			wantArea:     450,
			wantCentroid: image.Pt(10, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := PolygonMoments(tt.pts)
			assert.InDelta(t, tt.wantArea, m.M00, 1e-9)

			c, err := m.Centroid()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCentroid, c)
		})
	}
}

func TestPolygonMoments_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []image.Point
	}{
		{name: "empty", pts: nil},
		{name: "single point", pts: []image.Point{{5, 5}}},
		{name: "segment", pts: []image.Point{{0, 0}, {40, 0}}},
		{name: "collinear", pts: []image.Point{{0, 0}, {20, 20}, {40, 40}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := PolygonMoments(tt.pts)
			assert.Zero(t, m.M00)

			_, err := m.Centroid()
			assert.True(t, errors.Is(err, ErrDegenerateRegion))
		})
	}
}
