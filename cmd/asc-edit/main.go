// asc-edit adjusts the number of junction-stack instances in an LTspice
// schematic, updates their parameters, and optionally runs an external
// simulator on the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/RK0429/JPE-circuit-model/internal/cli"
	"github.com/RK0429/JPE-circuit-model/pkg/asc"
)

// stringList collects repeatable flag values.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, " ") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var (
		paramSpecs stringList
		switches   stringList

		num       = flag.Int("n", 0, "desired number of stacks")
		output    = flag.String("o", "", "output schematic path (default INPUT_modified.asc)")
		symbol    = flag.String("symbol", "1stack", "symbol name of the stack instances")
		simulate  = flag.Bool("simulate", false, "run the simulator after modification")
		simCmd    = flag.String("sim-cmd", "ltspice", "simulator executable")
		simOutput = flag.String("sim-output", "sim_results", "simulation output folder")
		timeout   = flag.Duration("timeout", asc.DefaultTimeout, "simulation timeout")
		verbose   = flag.Bool("v", false, "enable debug logging")
	)
	flag.Var(&paramSpecs, "p", "per-stack parameters, e.g. L=175n,R=8.29,C=100n (repeatable)")
	flag.Var(&switches, "switch", "extra simulator switch (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] INPUT -n NUM\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	cli.SetupLogging(*verbose)
	if flag.NArg() != 1 || *num < 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)
	out := *output
	if out == "" {
		ext := filepath.Ext(input)
		out = strings.TrimSuffix(input, ext) + "_modified" + ext
	}

	paramsList, err := asc.ParseParams(paramSpecs)
	if err != nil {
		cli.Fatal("invalid parameters", "err", err)
	}
	for _, params := range paramsList {
		for k, v := range params {
			if _, err := asc.ParseValue(v); err != nil {
				slog.Warn("parameter value is not a SPICE magnitude", "key", k, "value", v)
			}
		}
	}

	sch, err := asc.Load(input)
	if err != nil {
		cli.Fatal("failed to load schematic", "err", err)
	}
	if err := asc.AdjustStacks(sch, *symbol, *num, paramsList); err != nil {
		cli.Fatal("failed to adjust stacks", "err", err)
	}
	if err := sch.Save(out); err != nil {
		cli.Fatal("failed to save schematic", "err", err)
	}

	if !*simulate {
		return
	}
	runner := &asc.Runner{
		Command:   *simCmd,
		Switches:  switches,
		OutputDir: *simOutput,
		Timeout:   *timeout,
	}
	rawPath, logPath, err := runner.Run(context.Background(), out)
	if err != nil {
		cli.Fatal("simulation failed", "err", err)
	}
	slog.Info("simulation completed", "raw", rawPath, "log", logPath)
}
