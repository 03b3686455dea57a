// rint-fit fits the thermal model of the mesa internal resistance to a
// measured current-voltage sweep and renders the diagnostic figures.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/RK0429/JPE-circuit-model/internal/cli"
	"github.com/RK0429/JPE-circuit-model/pkg/fit"
	"github.com/RK0429/JPE-circuit-model/pkg/mesa"
	"github.com/RK0429/JPE-circuit-model/pkg/params"
	"github.com/RK0429/JPE-circuit-model/pkg/plotfig"
	"github.com/RK0429/JPE-circuit-model/pkg/table"
)

const thermalMaxEval = 100

func main() {
	var (
		outData = flag.String("o", "processed_data.dat", "path to save processed data")
		outPlot = flag.String("p", "fit_plots.pdf", "path to save primary plot")
		show    = flag.Bool("show", false, "open an interactive preview of the fit")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.StringVar(outData, "output-data", *outData, "path to save processed data")
	flag.StringVar(outPlot, "output-plot", *outPlot, "path to save primary plot")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] INPUT\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	cli.SetupLogging(*verbose)
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	t, err := table.Load(flag.Arg(0), table.Options{})
	if err != nil {
		cli.Fatal("failed to load input data", "err", err)
	}
	if err := table.DerivePowerResistance(t); err != nil {
		cli.Fatal("failed to process data", "err", err)
	}
	if err := t.Save(*outData); err != nil {
		cli.Fatal("failed to save processed data", "err", err)
	}

	iInt := plotfig.Scale(t.Column(table.ColCurrent), 1e-3) // mA -> A
	vInt := t.Column(table.ColReducedVoltage)

	// The fit runs on the finite points only; the full arrays are kept
	// for plotting.
	idx := fit.ValidIndices(iInt, vInt)
	iValid := fit.Select(idx, iInt)
	vValid := fit.Select(idx, vInt)
	weights := make([]float64, len(vValid))
	for i, v := range vValid {
		weights[i] = v * v
	}

	model := func(s *params.Set) []float64 {
		voltages, _ := mesa.IintToVint(iValid, mesa.FromSet(s))
		return voltages
	}
	res, err := fit.Fit(model, mesa.DefaultParams().Set(), vValid, fit.Options{
		Weights: weights,
		MaxEval: thermalMaxEval,
	})
	if err != nil {
		cli.Fatal("fit failed", "err", err)
	}
	best := mesa.FromSet(res.Params)
	for _, name := range res.Params.Names() {
		p := res.Params.Get(name)
		slog.Info("best-fit parameter", "name", name, "value", p.Value, "stderr", res.Stderr[name], "vary", p.Vary)
	}

	// Thermal-resistance model curve over the relevant temperature range.
	temps := make([]float64, 100)
	rth := make([]float64, len(temps))
	for i := range temps {
		temps[i] = -50 + 150*float64(i)/float64(len(temps)-1)
		rth[i] = mesa.TToRth(temps[i], best)
	}
	if err := plotfig.ThermalResistanceCurve(temps, rth, plotfig.WithSuffix(*outPlot, "_Thermal_Resistance")); err != nil {
		cli.Fatal("failed to plot thermal resistance", "err", err)
	}

	vCal, _ := mesa.IintToVint(iInt, best)
	if err := plotfig.VoltageCurrent(iInt, vInt, vCal, *outPlot); err != nil {
		cli.Fatal("failed to plot voltage vs current", "err", err)
	}

	tCal := make([]float64, len(vCal))
	rthCal := make([]float64, len(vCal))
	for i := range vCal {
		power := vCal[i] * iInt[i]
		tCal[i] = mesa.PToT(power, best.Gamma, best.TBath)
		rthCal[i] = mesa.TToRth(tCal[i], best)
	}
	if err := plotfig.CurrentTemperature(iInt, tCal, *outPlot); err != nil {
		cli.Fatal("failed to plot temperature vs current", "err", err)
	}
	if err := plotfig.CurrentThermalResistance(iInt, rthCal, 10*best.Gamma, *outPlot); err != nil {
		cli.Fatal("failed to plot thermal resistance vs current", "err", err)
	}

	if *show {
		ma := plotfig.Scale(iInt, 1e3)
		if err := plotfig.Preview("Voltage vs Current", "Current [mA]", "Voltage [V]",
			plotfig.Group{Name: "Experimental", X: ma, Y: vInt},
			plotfig.Group{Name: "Calculated", X: ma, Y: vCal},
		); err != nil {
			slog.Warn("preview failed", "err", err)
		}
	}
}
