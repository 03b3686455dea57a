// phase-analysis reduces a simulated DC sweep with phase probes: phase
// differences and radiated power, resampled into fixed time bins.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/RK0429/JPE-circuit-model/internal/cli"
	"github.com/RK0429/JPE-circuit-model/pkg/plotfig"
	"github.com/RK0429/JPE-circuit-model/pkg/table"
)

// defaultRadius is the radiative resistance used to scale the power
// trace.
const defaultRadius = 20

func main() {
	var (
		plotFile = flag.String("plot-file", "dc_sweep_JPE_phase.pdf", "path to save the plot")
		interval = flag.Duration("resample-interval", 100*time.Microsecond, "resample interval")
		radius   = flag.Float64("radius", defaultRadius, "resistance value for power calculation")
		show     = flag.Bool("show", false, "open an interactive preview")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] INPUT [OUTPUT]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	cli.SetupLogging(*verbose)
	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)
	output := "dc_sweep_JPE_phase_processed.txt"
	if flag.NArg() == 2 {
		output = flag.Arg(1)
	}

	t, err := table.Load(input, table.Options{Whitespace: true})
	if err != nil {
		cli.Fatal("failed to load input data", "err", err)
	}
	if err := table.DerivePhase(t); err != nil {
		cli.Fatal("failed to process data", "err", err)
	}
	resampled, err := t.Resample(*interval)
	if err != nil {
		cli.Fatal("failed to resample data", "err", err)
	}
	if err := resampled.Save(output); err != nil {
		cli.Fatal("failed to save processed data", "err", err)
	}

	dphi, err := table.PhaseDifference(resampled)
	if err != nil {
		cli.Fatal("failed to compute phase difference", "err", err)
	}
	times := resampled.Column("time")
	rel := make([]float64, len(times))
	for i, tv := range times {
		rel[i] = tv - times[0]
	}
	powerUW := plotfig.Scale(resampled.Column("power"), *radius*1e6)

	if err := plotfig.PhasePower(rel, dphi, powerUW, *plotFile); err != nil {
		cli.Fatal("failed to plot phase and power", "err", err)
	}

	if *show {
		if err := plotfig.Preview("Phase and Power", "Time [s]", "Δφ [rad] / P_rad [uW]",
			plotfig.Group{Name: "Δφ", Style: "lines", X: rel, Y: dphi},
			plotfig.Group{Name: "P_rad", Style: "lines", X: rel, Y: powerUW},
		); err != nil {
			slog.Warn("preview failed", "err", err)
		}
	}
}
