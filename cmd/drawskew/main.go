// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Drawskew plots benchmark throughput or abort rate against the
// contention degree (the zipf parameter of the key distribution).
//
// Usage:
//
//	drawskew -w workload -t threads [-m metric] [-f file] [-o out]
//
// With -m tps (the default) the figure is a line chart of committed
// transactions per second; with -m abort it is a bar chart of aborts
// per commit with one group of bars per zipf value. Workload pre
// compares the pre-scheduled Spectrum variants.
//
// The input defaults to data/<workload>_<threads>.csv and may be a CSV
// table or a raw benchmark log. The figure is written to
// skew-<metric>-<workload>-<threads>.pdf unless -o names another file.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spectrum-cc/benchviz/benchlog"
	"github.com/spectrum-cc/benchviz/internal/choice"
	"github.com/spectrum-cc/benchviz/internal/figure"
	"github.com/spectrum-cc/benchviz/internal/input"
	"github.com/spectrum-cc/benchviz/palette"
	"github.com/spectrum-cc/benchviz/rectable"
	"github.com/spectrum-cc/benchviz/tickstep"
	"github.com/spf13/pflag"
)

var (
	workloads = []string{"smallbank", "ycsb", "tpcc", "pre"}
	metrics   = []string{"tps", "abort"}

	// threadCounts are the thread counts the benchmark scripts sweep.
	threadCounts = []string{"6", "12", "18", "24", "30", "36"}
)

const abortRatio = "abort ratio"

func main() {
	log.SetPrefix("drawskew: ")
	log.SetFlags(0)
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(stdout, stderr io.Writer, args []string) error {
	fs := pflag.NewFlagSet("drawskew", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	workload := choice.Var(fs, "workload", "w", "", "benchmark workload", workloads...)
	threads := choice.Var(fs, "threads", "t", "", "thread count of the data set", threadCounts...)
	metric := choice.Var(fs, "metric", "m", "tps", "quantity to plot", metrics...)
	file := fs.StringP("file", "f", "", "input `file` (default data/<workload>_<threads>.csv)")
	out := fs.StringP("output", "o", "", "output `file` (default skew-<metric>-<workload>-<threads>.pdf)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: drawskew -w workload -t threads [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments %q", fs.Args())
	}
	if err := choice.Validate(workload, threads, metric); err != nil {
		return err
	}
	w, n, m := workload.Get(), threads.Get(), metric.Get()

	path := *file
	if path == "" {
		path = filepath.Join("data", w+"_"+n+".csv")
	}
	dst := *out
	if dst == "" {
		dst = fmt.Sprintf("skew-%s-%s-%s.pdf", m, w, n)
	}

	t, err := input.Load(path)
	if err != nil {
		return err
	}
	if m == "abort" {
		if t, err = t.Derive(abortRatio, rectable.Ratio(benchlog.FieldAbort, benchlog.FieldCommit)); err != nil {
			return err
		}
	}
	spec, err := figure.Draw(t, newFigure(w, m), dst)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (y step %s)\n", dst, spec.Format(float64(spec.Step)))
	return nil
}

func newFigure(workload, metric string) figure.Figure {
	f := figure.Figure{
		X:      benchlog.FieldZipf,
		XLabel: "Contention Degree (Zipf)",
	}
	if workload == "tpcc" {
		f.XLabel = "Number of Items"
	}
	switch metric {
	case "tps":
		f.Kind = figure.Lines
		f.Schema = palette.Lines
		f.Y = benchlog.FieldCommit
		f.YLabel = "Throughput (Txn/s)"
		f.Suffix = tickstep.Thousand
		switch workload {
		case "smallbank":
			f.Suffix = tickstep.Million
		case "tpcc":
			f.Overrides.Step = 14000
		}
	case "abort":
		f.Kind = figure.Bars
		f.Schema = palette.Bars
		f.Y = abortRatio
		f.YLabel = "Aborts / Commit"
		f.Overrides = tickstep.Overrides{Step: 7, Max: 29}
	}
	if workload == "pre" {
		f.Schema = palette.PreSched
	}
	return f
}
