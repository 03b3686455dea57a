// Package plotfig renders the diagnostic figures of the analysis tools
// with gonum/plot, plus optional interactive previews through gnuplot.
package plotfig

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// UnitFactors scales Watts into the requested display unit.
var UnitFactors = map[string]float64{
	"W":  1,
	"mW": 1e3,
	"uW": 1e6,
	"nW": 1e9,
	"pW": 1e12,
}

var (
	colorExperimental = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorCalculated   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorGray         = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// WithSuffix inserts a suffix before the file extension, so one --output
// flag can fan out into several figures.
func WithSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

func newFigure(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Vertical.Width = vg.Points(0.5)
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Width = vg.Points(0.5)
	p.Add(grid)
	return p
}

func xy(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) ||
			math.IsInf(xs[i], 0) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func addScatter(p *plot.Plot, xs, ys []float64, c color.Color, label string) error {
	s, err := plotter.NewScatter(xy(xs, ys))
	if err != nil {
		return fmt.Errorf("scatter %q: %w", label, err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.Shape = draw.CircleGlyph{}
	p.Add(s)
	if label != "" {
		p.Legend.Add(label, s)
	}
	return nil
}

func addLine(p *plot.Plot, xs, ys []float64, c color.Color, label string) error {
	l, err := plotter.NewLine(xy(xs, ys))
	if err != nil {
		return fmt.Errorf("line %q: %w", label, err)
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	p.Add(l)
	if label != "" {
		p.Legend.Add(label, l)
	}
	return nil
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		slog.Error("failed to save plot", "path", path, "err", err)
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	slog.Info("plot saved", "path", path)
	return nil
}

// Scale returns xs multiplied by factor, leaving the input untouched.
func Scale(xs []float64, factor float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = v * factor
	}
	return out
}

// Sub returns the element-wise difference a−b.
func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// ThermalResistanceCurve plots a thermal-resistance model curve over a
// temperature range.
func ThermalResistanceCurve(temps, rth []float64, path string) error {
	p := newFigure("", "Temperature [K]", "Thermal Resistance [K/W]")
	if err := addLine(p, temps, rth, colorCalculated, "Thermal Resistance Model"); err != nil {
		return err
	}
	return save(p, path)
}

// VoltageCurrent plots experimental and calculated junction voltage
// against current (mA).
func VoltageCurrent(currents, vExp, vCal []float64, path string) error {
	p := newFigure("", "Current [mA]", "Voltage [V]")
	ma := Scale(currents, 1e3)
	if err := addScatter(p, ma, vExp, colorExperimental, "Experimental"); err != nil {
		return err
	}
	if err := addScatter(p, ma, vCal, colorCalculated, "Calculated"); err != nil {
		return err
	}
	return save(p, path)
}

// CurrentTemperature plots the solved temperature against current. The
// figure lands next to path with a descriptive suffix.
func CurrentTemperature(currents, temps []float64, path string) error {
	p := newFigure("", "Current [A]", "Temperature [K]")
	if err := addScatter(p, currents, temps, colorExperimental, ""); err != nil {
		return err
	}
	return save(p, WithSuffix(path, "_Temperature_vs_Current"))
}

// CurrentThermalResistance plots the thermal resistance against current,
// clipped at ymax.
func CurrentThermalResistance(currents, rth []float64, ymax float64, path string) error {
	p := newFigure("", "Current [A]", "Thermal Resistance [K/W]")
	p.Y.Min = 0
	p.Y.Max = ymax
	if err := addScatter(p, currents, rth, colorExperimental, ""); err != nil {
		return err
	}
	return save(p, WithSuffix(path, "_Thermal_Resistance_vs_Current"))
}

// FitComparison plots scaled experimental output power and the calculated
// model against voltage, both in µW.
func FitComparison(volts, expScaled, cal []float64, path string) error {
	p := newFigure("", "Voltage [V]", "Output Power [uW]")
	if err := addScatter(p, volts, Scale(expScaled, 1e6), colorExperimental, "Experimental"); err != nil {
		return err
	}
	if err := addScatter(p, volts, Scale(cal, 1e6), colorCalculated, "Calculated"); err != nil {
		return err
	}
	return save(p, path)
}

// DCSweep renders the three panels of the DC sweep figure as separate
// files: current vs voltage at path, power vs voltage and current vs
// power with suffixes.
func DCSweep(dv, powerW, currentMA []float64, unit string, xlim, ylim [2]float64, path string) error {
	factor, ok := UnitFactors[unit]
	if !ok {
		return fmt.Errorf("invalid output unit %q", unit)
	}
	power := Scale(powerW, factor)

	p := newFigure("", "Voltage [V]", "Current [mA]")
	p.X.Min, p.X.Max = xlim[0], xlim[1]
	if ylim[0] != 0 || ylim[1] != 0 {
		p.Y.Min, p.Y.Max = ylim[0], ylim[1]
	}
	if err := addScatter(p, dv, currentMA, colorExperimental, ""); err != nil {
		return err
	}
	if err := save(p, path); err != nil {
		return err
	}

	p = newFigure("", "Voltage [V]", fmt.Sprintf("Power [%s]", unit))
	p.X.Min, p.X.Max = xlim[0], xlim[1]
	if err := addScatter(p, dv, power, colorExperimental, ""); err != nil {
		return err
	}
	if err := save(p, WithSuffix(path, "_power")); err != nil {
		return err
	}

	p = newFigure("", fmt.Sprintf("Power [%s]", unit), "Current [mA]")
	if ylim[0] != 0 || ylim[1] != 0 {
		p.Y.Min, p.Y.Max = ylim[0], ylim[1]
	}
	if err := addScatter(p, power, currentMA, colorExperimental, ""); err != nil {
		return err
	}
	return save(p, WithSuffix(path, "_power_current"))
}

// ComplexFigure renders the combined experimental/calculated sweep as
// three panel files: current vs voltage at path, output power vs voltage
// and current vs output power with suffixes. Powers are in µW.
func ComplexFigure(vExp, iExp, pExpUW, vCal, iCal, pCalUW []float64, path string) error {
	p := newFigure("", "Voltage [V]", "Current [mA]")
	p.X.Min, p.X.Max = -0.05, 1.5
	p.Y.Min, p.Y.Max = 0, 45
	if vExp != nil {
		if err := addScatter(p, vExp, iExp, colorGray, "Experimental"); err != nil {
			return err
		}
	}
	if err := addScatter(p, vCal, iCal, colorCalculated, "Calculated"); err != nil {
		return err
	}
	if err := save(p, path); err != nil {
		return err
	}

	p = newFigure("", "Voltage [V]", "Output Power [uW]")
	p.X.Min, p.X.Max = -0.05, 1.5
	if vExp != nil {
		if err := addScatter(p, vExp, pExpUW, colorGray, "Experimental"); err != nil {
			return err
		}
	}
	if err := addScatter(p, vCal, pCalUW, colorCalculated, "Calculated"); err != nil {
		return err
	}
	if err := save(p, WithSuffix(path, "_power")); err != nil {
		return err
	}

	p = newFigure("", "Output Power [uW]", "Current [mA]")
	p.Y.Min, p.Y.Max = 0, 45
	if vExp != nil {
		if err := addScatter(p, pExpUW, iExp, colorGray, "Experimental"); err != nil {
			return err
		}
	}
	if err := addScatter(p, pCalUW, iCal, colorCalculated, "Calculated"); err != nil {
		return err
	}
	return save(p, WithSuffix(path, "_power_current"))
}

// PhasePower plots the phase difference and the radiated power over time
// on a shared axis, power already scaled to µW.
func PhasePower(tSec, dphi, powerUW []float64, path string) error {
	p := newFigure("", "Time [s]", "Δφ [rad] / P_rad [uW]")
	if err := addLine(p, tSec, dphi, colorExperimental, "Δφ"); err != nil {
		return err
	}
	if err := addLine(p, tSec, powerUW, colorCalculated, "P_rad"); err != nil {
		return err
	}
	return save(p, path)
}

// TemperatureTime plots a temperature probe trace over time.
func TemperatureTime(tSec, temps []float64, path string) error {
	p := newFigure("Temperature over Time", "Time [s]", "Temperature [K]")
	if err := addLine(p, tSec, temps, colorExperimental, ""); err != nil {
		return err
	}
	return save(p, path)
}
