// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner drives the benchmark binary over a Plan and collects
// averaged results into a table.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/spectrum-cc/benchviz/benchlog"
	"github.com/spectrum-cc/benchviz/rectable"
)

// An Executor runs one benchmark command and returns what it wrote to
// standard error, where the benchmark reports its results.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Exec is the Executor that runs real processes.
type Exec struct{}

func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ProcessError{Command: commandLine(name, args), Err: err, Stderr: stderr.String()}
	}
	return stderr.Bytes(), nil
}

// A ProcessError reports a benchmark process that could not be started
// or exited unsuccessfully.
type ProcessError struct {
	Command string
	Err     error
	Stderr  string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// An OutputError reports benchmark output that lacks a required metric.
type OutputError struct {
	Command string
	Metric  string
	Output  string
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%s: no %s in output", e.Command, e.Metric)
}

// FieldTablePartition is the result column holding the partition count.
const FieldTablePartition = "table_partition"

// Percentiles are the latency percentiles the benchmark reports.
var Percentiles = []int{50, 75, 95, 99}

var (
	commitRE    = regexp.MustCompile(`commit\s+([\d.]+)`)
	executionRE = regexp.MustCompile(`execution\s+([\d.]+)`)
	latencyRE   = regexp.MustCompile(`latency\((50|75|95|99)%\)\s+(\d+)us`)
)

// A Measurement is the result of one benchmark run.
type Measurement struct {
	Commit    float64 // committed transactions per second
	Execution float64 // executed transactions per second
	Latency   map[int]float64
}

// Abort returns the aborted transactions per second.
func (m Measurement) Abort() float64 { return m.Execution - m.Commit }

// Measure extracts a Measurement from benchmark output. Commit and
// execution rates are required. Latencies are optional.
func Measure(command string, out []byte) (Measurement, error) {
	m := Measurement{Latency: make(map[int]float64)}
	var err error
	if m.Commit, err = find(commitRE, out); err != nil {
		return m, &OutputError{Command: command, Metric: "commit", Output: string(out)}
	}
	if m.Execution, err = find(executionRE, out); err != nil {
		return m, &OutputError{Command: command, Metric: "execution", Output: string(out)}
	}
	for _, sub := range latencyRE.FindAllSubmatch(out, -1) {
		p, _ := strconv.Atoi(string(sub[1]))
		us, _ := strconv.ParseFloat(string(sub[2]), 64)
		m.Latency[p] = us
	}
	return m, nil
}

func find(re *regexp.Regexp, out []byte) (float64, error) {
	sub := re.FindSubmatch(out)
	if sub == nil {
		return 0, fmt.Errorf("no match for %s", re)
	}
	return strconv.ParseFloat(string(sub[1]), 64)
}

// LatencyField returns the result column for a latency percentile.
func LatencyField(p int) string { return "latency_" + strconv.Itoa(p) }

// Run executes every configuration of plan, each plan.Repeat times,
// and returns one row per configuration holding the means over the
// successful repeats. The raw output of every run is written to log in
// the format read by ParseRunLog.
//
// A failed repeat is noted in log and skipped. A configuration with no
// successful repeat stops the run with the last repeat's error.
func Run(ctx context.Context, plan *Plan, ex Executor, log io.Writer) (*rectable.Table, error) {
	configs, err := plan.Configs()
	if err != nil {
		return nil, err
	}
	var b rectable.Builder
	for _, c := range configs {
		args := plan.Args(c)
		cmd := commandLine(plan.Binary, args)
		fmt.Fprintf(log, "#COMMIT-%s CONFIG-%s\n%s\n", plan.Commit, c.CC, cmd)

		var ms []Measurement
		var lastErr error
		for i := 0; i < plan.Repeat; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out, err := ex.Run(ctx, plan.Binary, args...)
			if err == nil {
				log.Write(out)
				if len(out) > 0 && out[len(out)-1] != '\n' {
					io.WriteString(log, "\n")
				}
				var m Measurement
				if m, err = Measure(cmd, out); err == nil {
					ms = append(ms, m)
					continue
				}
			}
			fmt.Fprintf(log, "# repeat %d failed: %v\n", i, err)
			lastErr = err
		}
		if len(ms) == 0 {
			if lastErr == nil {
				lastErr = fmt.Errorf("%s: no repeats", cmd)
			}
			return nil, lastErr
		}

		rec := summarize(ms)
		rec.Set(benchlog.FieldProtocol, benchlog.StringValue(Protocol(c.CC)))
		rec.Set(benchlog.FieldThreads, benchlog.IntValue(int64(c.Threads)))
		rec.Set(benchlog.FieldZipf, benchlog.FloatValue(c.Zipf))
		rec.Set(FieldTablePartition, benchlog.IntValue(int64(plan.Partitions)))
		if err := b.Add(rec); err != nil {
			return nil, err
		}
	}
	return b.Done(), nil
}

// summarize averages ms into a record with commit, abort and latency
// columns. Latency columns are set only if every measurement has them.
func summarize(ms []Measurement) *benchlog.Record {
	rec := benchlog.NewRecord()
	var commit, abort []float64
	for _, m := range ms {
		commit = append(commit, m.Commit)
		abort = append(abort, m.Abort())
	}
	rec.Set(benchlog.FieldCommit, benchlog.FloatValue(stats.Mean(commit)))
	rec.Set(benchlog.FieldAbort, benchlog.FloatValue(stats.Mean(abort)))
	for _, p := range Percentiles {
		var xs []float64
		for _, m := range ms {
			if v, ok := m.Latency[p]; ok {
				xs = append(xs, v)
			}
		}
		if len(xs) == len(ms) {
			rec.Set(LatencyField(p), benchlog.FloatValue(stats.Mean(xs)))
		}
	}
	return rec
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
