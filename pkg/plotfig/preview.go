package plotfig

import (
	"fmt"
	"log/slog"

	"github.com/Arafatk/glot"
)

// Group is one named point group of an interactive preview.
type Group struct {
	Name  string
	Style string // "points" or "lines"
	X, Y  []float64
}

// Preview opens a persistent gnuplot window with the given point groups,
// the interactive counterpart of the saved figures. A missing gnuplot
// binary is reported, not fatal.
func Preview(title, xlabel, ylabel string, groups ...Group) error {
	plt, err := glot.NewPlot(2, true, false)
	if err != nil {
		slog.Warn("interactive preview unavailable", "err", err)
		return fmt.Errorf("preview: %w", err)
	}
	plt.SetTitle(title)
	plt.SetXLabel(xlabel)
	plt.SetYLabel(ylabel)
	for _, g := range groups {
		style := g.Style
		if style == "" {
			style = "points"
		}
		if err := plt.AddPointGroup(g.Name, style, [][]float64{g.X, g.Y}); err != nil {
			return fmt.Errorf("preview group %q: %w", g.Name, err)
		}
	}
	return nil
}
