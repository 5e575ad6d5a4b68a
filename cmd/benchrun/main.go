// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchrun runs the benchmark binary over an experiment plan.
//
// Usage:
//
//	benchrun --plan plan.yaml [--out dir] [--db dsn] [--db-driver sqlite3|mysql] [--chart] [--chart-format pdf|svg|png]
//
// The plan is a YAML file naming the benchmark binary, the workload,
// the thread counts and zipf values to sweep and the protocols to run:
//
//	binary: ../build/bin/bench
//	workload: YCSB
//	keys: 1000000
//	zipf: [0.5, 1.1]
//	threads: [6, 12, 18, 24, 30, 36]
//	repeat: 10
//	duration: 2s
//	protocols:
//	  - "Calvin:{{.Threads}}:{{.Partitions}}:{{.Batch}}"
//	  - "Aria:{{.Threads}}:{{.Partitions}}:{{.Batch}}:FALSE"
//	  - "Sparkle:{{.Threads}}:{{.Partitions}}"
//	  - "Spectrum:{{.Threads}}:{{.Partitions}}:COPYONWRITE"
//
// Benchrun writes the raw output of every run to <out>/<name>.log and
// the averaged results to <out>/<name>.csv, where name is the plan
// file name without its extension. With --db the results are also
// saved to a database. With --chart it draws a throughput and an abort
// figure for each zipf value; a figure that fails to render is
// reported and skipped.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spectrum-cc/benchviz/benchlog"
	"github.com/spectrum-cc/benchviz/internal/choice"
	"github.com/spectrum-cc/benchviz/internal/figure"
	"github.com/spectrum-cc/benchviz/palette"
	"github.com/spectrum-cc/benchviz/rectable"
	"github.com/spectrum-cc/benchviz/runner"
	"github.com/spectrum-cc/benchviz/store"
	"github.com/spectrum-cc/benchviz/tickstep"
	"github.com/spf13/pflag"
)

func main() {
	log.SetPrefix("benchrun: ")
	log.SetFlags(0)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:], runner.Exec{}); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string, ex runner.Executor) error {
	fs := pflag.NewFlagSet("benchrun", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	planPath := fs.String("plan", "", "experiment plan `file` (YAML)")
	outDir := fs.String("out", ".", "output `directory`")
	dsn := fs.String("db", "", "also save results to the database at `dsn`")
	driver := choice.Var(fs, "db-driver", "", "sqlite3", "database driver", "sqlite3", "mysql")
	charts := fs.Bool("chart", false, "draw figures of the results")
	format := choice.Var(fs, "chart-format", "", "pdf", "figure format", "pdf", "svg", "png")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: benchrun --plan plan.yaml [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := choice.Validate(driver, format); err != nil {
		return err
	}
	if *planPath == "" || fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("need --plan and no arguments")
	}

	f, err := os.Open(*planPath)
	if err != nil {
		return err
	}
	plan, err := runner.LoadPlan(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", *planPath, err)
	}
	if plan.Commit == "" {
		plan.Commit = gitCommit(ctx, filepath.Dir(plan.Binary))
	}
	name := strings.TrimSuffix(filepath.Base(*planPath), filepath.Ext(*planPath))

	if err := os.MkdirAll(*outDir, 0o777); err != nil {
		return err
	}
	logFile, err := os.Create(filepath.Join(*outDir, name+".log"))
	if err != nil {
		return err
	}
	defer logFile.Close()

	configs, err := plan.Configs()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "running %d configurations, %d repeats each\n", len(configs), plan.Repeat)
	t, err := runner.Run(ctx, plan, ex, logFile)
	if err != nil {
		return err
	}
	if err := logFile.Close(); err != nil {
		return err
	}

	csvPath := filepath.Join(*outDir, name+".csv")
	if err := writeCSV(csvPath, t); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", csvPath)

	if *dsn != "" {
		st, err := store.Open(driver.Get(), *dsn)
		if err != nil {
			return err
		}
		id, err := st.SaveTable(ctx, name, t)
		st.Close()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "saved run %d\n", id)
	}

	if *charts {
		failed := drawAll(stdout, stderr, t, *outDir, name, format.Get())
		if failed > 0 {
			return fmt.Errorf("%d figure(s) failed", failed)
		}
	}
	return nil
}

func writeCSV(path string, t *rectable.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// drawAll draws the throughput and abort figures of every zipf value
// in t and returns the number of figures that failed.
func drawAll(stdout, stderr io.Writer, t *rectable.Table, dir, name, ext string) int {
	t, err := t.Derive("abort ratio", rectable.Ratio(benchlog.FieldAbort, benchlog.FieldCommit))
	if err != nil {
		fmt.Fprintf(stderr, "benchrun: %v\n", err)
		return 1
	}
	failed := 0
	for _, z := range t.Unique(benchlog.FieldZipf) {
		sub := t.Filter(benchlog.FieldZipf, z)
		zipf := strconv.FormatFloat(mustFloat(z), 'g', -1, 64)
		for _, f := range []struct {
			metric string
			fig    figure.Figure
		}{
			{"tps", figure.Figure{
				Kind:      figure.Lines,
				Schema:    palette.Lines,
				X:         benchlog.FieldThreads,
				Y:         benchlog.FieldCommit,
				XLabel:    "Threads",
				YLabel:    "Throughput (Txn/s)",
				Suffix:    tickstep.Thousand,
				TickEachX: true,
			}},
			{"abort", figure.Figure{
				Kind:   figure.Bars,
				Schema: palette.Bars,
				X:      benchlog.FieldThreads,
				Y:      "abort ratio",
				XLabel: "Threads",
				YLabel: "Aborts / Commit",
			}},
		} {
			path := filepath.Join(dir, fmt.Sprintf("threads-%s-%s-%s.%s", f.metric, name, zipf, ext))
			if _, err := figure.Draw(sub, f.fig, path); err != nil {
				fmt.Fprintf(stderr, "benchrun: %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Fprintf(stdout, "wrote %s\n", path)
		}
	}
	return failed
}

func mustFloat(v benchlog.Value) float64 {
	f, _ := v.Float()
	return f
}

// gitCommit returns the commit checked out in dir, or "unknown".
func gitCommit(ctx context.Context, dir string) string {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
