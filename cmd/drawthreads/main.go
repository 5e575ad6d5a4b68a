// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Drawthreads plots benchmark throughput or abort rate against the
// number of threads.
//
// Usage:
//
//	drawthreads -w workload -c contention [-m metric] [-f file] [-o out]
//
// Each protocol in the input is one series. With -m tps (the default)
// the figure is a line chart of committed transactions per second;
// with -m abort it is a bar chart of aborts per commit.
//
// The input defaults to data/<workload>_<contention>.csv and may be a
// CSV table or a raw benchmark log. The figure is written to
// threads-<metric>-<workload>-<contention>.pdf unless -o names another
// file; the extension of -o (.pdf, .svg or .png) selects the format.
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
	workloads   = []string{"smallbank", "ycsb", "tpcc"}
	contentions = []string{"uniform", "skewed", "5orderlines", "10orderlines", "20orderlines", "compare", "pres"}
	metrics     = []string{"tps", "abort"}
)

// stepOverrides fixes the Y tick step of figures whose computed step
// lands on awkward labels. Steps above 5K must be multiples of 5K.
var stepOverrides = map[[2]string]int64{
	{"smallbank", "skewed"}: 140000,
	{"tpcc", "10orderlines"}: 10000,
}

// abortRatio is the derived column drawn by -m abort.
const abortRatio = "abort ratio"

func main() {
	log.SetPrefix("drawthreads: ")
	log.SetFlags(0)
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(stdout, stderr io.Writer, args []string) error {
	fs := pflag.NewFlagSet("drawthreads", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	workload := choice.Var(fs, "workload", "w", "", "benchmark workload", workloads...)
	contention := choice.Var(fs, "contention", "c", "", "contention setting of the data set", contentions...)
	metric := choice.Var(fs, "metric", "m", "tps", "quantity to plot", metrics...)
	file := fs.StringP("file", "f", "", "input `file` (default data/<workload>_<contention>.csv)")
	out := fs.StringP("output", "o", "", "output `file` (default threads-<metric>-<workload>-<contention>.pdf)")
	serial := fs.Float64("serial", 0, "add a Serial series at this constant throughput (0 for none)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: drawthreads -w workload -c contention [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected arguments %q", fs.Args())
	}
	if err := choice.Validate(workload, contention, metric); err != nil {
		return err
	}
	w, c, m := workload.Get(), contention.Get(), metric.Get()

	path := *file
	if path == "" {
		path = filepath.Join("data", w+"_"+c+".csv")
	}
	dst := *out
	if dst == "" {
		dst = fmt.Sprintf("threads-%s-%s-%s.pdf", m, w, c)
	}

	t, err := input.Load(path)
	if err != nil {
		return err
	}
	if *serial > 0 && m == "tps" {
		t = t.WithBaseline("Serial", benchlog.FieldThreads, benchlog.FieldCommit, *serial)
	}
	f := newFigure(w, c, m)
	if m == "abort" {
		if t, err = t.Derive(abortRatio, rectable.Ratio(benchlog.FieldAbort, benchlog.FieldCommit)); err != nil {
			return err
		}
	}
	spec, err := figure.Draw(t, f, dst)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (y step %s)\n", dst, spec.Format(float64(spec.Step)))
	return nil
}

func newFigure(workload, contention, metric string) figure.Figure {
	f := figure.Figure{
		X:         benchlog.FieldThreads,
		XLabel:    "Threads",
		TickEachX: true,
	}
	switch contention {
	case "compare":
		f.Schema = palette.Compare
	case "pres":
		f.Schema = palette.Pres
	}
	switch metric {
	case "tps":
		f.Kind = figure.Lines
		f.Y = benchlog.FieldCommit
		f.YLabel = "Throughput (Txn/s)"
		f.Suffix = tickstep.Thousand
		f.Overrides.Step = stepOverrides[[2]string{workload, contention}]
		if f.Schema == nil {
			f.Schema = palette.Lines
		}
	case "abort":
		f.Kind = figure.Bars
		f.Y = abortRatio
		f.YLabel = "Aborts / Commit"
		if f.Schema == nil {
			f.Schema = palette.Bars
		}
	}
	return f
}
