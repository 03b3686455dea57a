// time-average reduces a simulated DC sweep by time-binning: canonical
// probe names, radiated power, resampled means, and the sweep figures.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RK0429/JPE-circuit-model/internal/cli"
	"github.com/RK0429/JPE-circuit-model/pkg/plotfig"
	"github.com/RK0429/JPE-circuit-model/pkg/table"
)

// defaultRadius is the radiative resistance used to derive and scale the
// power column.
const defaultRadius = 8.537

func main() {
	var (
		outputFile = flag.String("output-file", "", "processed data output path (default INPUT_processed.txt)")
		plotPath   = flag.String("plot-path", "", "DC sweep plot file path")
		ttPlotPath = flag.String("tt-plot-path", "", "temperature-time plot file path")
		outputUnit = flag.String("output-unit", "uW", "unit for power plot (W, mW, uW, nW, pW)")
		xlim       = flag.String("xlim", "-0.05,1.5", "x-axis limits as min,max")
		ylim       = flag.String("ylim", "", "y-axis limits as min,max")
		delimiter  = flag.String("delimiter", "whitespace", "input delimiter: whitespace or tab")
		freq       = flag.Duration("resample-freq", time.Nanosecond, "resample interval")
		skip       = flag.Bool("skip-resample", false, "skip resampling for already averaged data")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
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
	input := flag.Arg(0)

	var opts table.Options
	switch *delimiter {
	case "whitespace":
		opts.Whitespace = true
	case "tab":
	default:
		cli.Fatal("invalid delimiter", "delimiter", *delimiter)
	}

	t, err := table.Load(input, opts)
	if err != nil {
		cli.Fatal("failed to load input data", "err", err)
	}
	t.Rename(table.SpiceAliases)
	table.DeriveRadPower(t, defaultRadius)

	if *skip {
		slog.Info("skipping time conversion and resampling as requested")
	} else {
		if t.Has("time") {
			t, err = t.Resample(*freq)
			if err != nil {
				cli.Fatal("failed to resample data", "err", err)
			}
		} else {
			slog.Warn("no time column, skipping resampling")
		}
		out := *outputFile
		if out == "" {
			ext := filepath.Ext(input)
			out = strings.TrimSuffix(input, ext) + "_processed.txt"
		}
		if err := t.Save(out); err != nil {
			cli.Fatal("failed to save processed data", "err", err)
		}
	}

	if *plotPath != "" {
		if err := t.Require("V(nt)", "V(na)", "power", "I(Rgnd)"); err != nil {
			cli.Fatal("missing columns for DC sweep plot", "err", err)
		}
		xl, err := parseLimits(*xlim)
		if err != nil {
			cli.Fatal("invalid xlim", "err", err)
		}
		var yl [2]float64
		if *ylim != "" {
			if yl, err = parseLimits(*ylim); err != nil {
				cli.Fatal("invalid ylim", "err", err)
			}
		}
		dv := plotfig.Sub(t.Column("V(nt)"), t.Column("V(na)"))
		power := plotfig.Scale(t.Column("power"), defaultRadius)
		current := plotfig.Scale(t.Column("I(Rgnd)"), 1e3) // mA
		if err := plotfig.DCSweep(dv, power, current, *outputUnit, xl, yl, *plotPath); err != nil {
			cli.Fatal("failed to plot DC sweep", "err", err)
		}
	}

	if *ttPlotPath != "" {
		if !t.Has("V(t)") {
			slog.Warn("skipping temperature-time plot: V(t) column not found")
			return
		}
		if err := plotfig.TemperatureTime(t.Column("time"), t.Column("V(t)"), *ttPlotPath); err != nil {
			cli.Fatal("failed to plot temperature over time", "err", err)
		}
	}
}

func parseLimits(s string) ([2]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]float64{}, fmt.Errorf("want min,max, got %q", s)
	}
	var out [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [2]float64{}, fmt.Errorf("limit %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
