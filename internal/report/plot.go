package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/movetrack/internal/track"
)

// Plot dimensions.
const (
	PlotWidth  = 10 * vg.Inch
	PlotHeight = 5 * vg.Inch
)

// ErrEmptyTrack is returned when there is nothing to plot.
var ErrEmptyTrack = errors.New("track is empty")

var (
	xColor = color.RGBA{R: 200, A: 255}
	yColor = color.RGBA{B: 200, A: 255}
)

// NewPlot builds a plot of both coordinates against the frame index.
func NewPlot(positions []track.Position) (*plot.Plot, error) {
	if len(positions) == 0 {
		return nil, ErrEmptyTrack
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Tracked position (%d frames)", len(positions))
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Normalized position"
	p.Y.Min = 0
	p.Y.Max = 1

	xPts := make(plotter.XYs, len(positions))
	yPts := make(plotter.XYs, len(positions))
	for i, pos := range positions {
		xPts[i] = plotter.XY{X: float64(i), Y: pos.X}
		yPts[i] = plotter.XY{X: float64(i), Y: pos.Y}
	}

	xLine, err := plotter.NewLine(xPts)
	if err != nil {
		return nil, err
	}
	xLine.Color = xColor
	xLine.Width = vg.Points(1)
	p.Add(xLine)
	p.Legend.Add("x", xLine)

	yLine, err := plotter.NewLine(yPts)
	if err != nil {
		return nil, err
	}
	yLine.Color = yColor
	yLine.Width = vg.Points(1)
	p.Add(yLine)
	p.Legend.Add("y", yLine)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// WritePlot renders the track to an image file. The format follows the
// file extension.
func WritePlot(path string, positions []track.Position) error {
	p, err := NewPlot(positions)
	if err != nil {
		return err
	}
	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// RenderPNG writes the track plot as PNG to w.
func RenderPNG(w io.Writer, positions []track.Position) error {
	p, err := NewPlot(positions)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
