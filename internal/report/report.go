// Package report renders a finished track for people: console lines,
// summary statistics and a trajectory plot.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/movetrack/internal/track"
)

const separator = "--------"

// Print writes one "x, y" line per track entry followed by the fps footer.
// Coordinates are printed with two significant digits.
func Print(w io.Writer, positions []track.Position, r track.Report) error {
	for _, p := range positions {
		if _, err := fmt.Fprintf(w, "%s, %s\n", formatCoord(p.X), formatCoord(p.Y)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%s\nfps: %.2f\n%s\n", separator, r.FPS, separator)
	return err
}

func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'g', 2, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Summary holds per-axis statistics of a track.
type Summary struct {
	Frames     int     `json:"frames"`
	MeanX      float64 `json:"mean_x"`
	MeanY      float64 `json:"mean_y"`
	StdDevX    float64 `json:"stddev_x"`
	StdDevY    float64 `json:"stddev_y"`
	PathLength float64 `json:"path_length"`
}

// Summarize computes the mean and spread of a track along with the total
// distance travelled in normalized units.
func Summarize(positions []track.Position) Summary {
	s := Summary{Frames: len(positions)}
	if len(positions) == 0 {
		return s
	}

	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))
	for i, p := range positions {
		xs[i] = p.X
		ys[i] = p.Y
		if i > 0 {
			prev := positions[i-1]
			s.PathLength += math.Hypot(p.X-prev.X, p.Y-prev.Y)
		}
	}

	if len(positions) == 1 {
		s.MeanX, s.MeanY = xs[0], ys[0]
		return s
	}

	s.MeanX, s.StdDevX = stat.MeanStdDev(xs, nil)
	s.MeanY, s.StdDevY = stat.MeanStdDev(ys, nil)
	return s
}

// String formats the summary for console output.
func (s Summary) String() string {
	return fmt.Sprintf("frames: %d  mean: (%.2f, %.2f)  stddev: (%.3f, %.3f)  path: %.3f",
		s.Frames, s.MeanX, s.MeanY, s.StdDevX, s.StdDevY, s.PathLength)
}
