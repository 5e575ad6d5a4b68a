// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/spectrum-cc/benchviz/benchlog"
	"github.com/spectrum-cc/benchviz/rectable"
)

const (
	commitMarker = "#COMMIT-"
	configMarker = "CONFIG-"
)

// ParseRunLog reads a raw log written by Run back into a table with one
// row per configuration. Measurements of all repeats in a section are
// averaged.
//
// The threads and table_partition columns come from the second and
// third fields of the concurrency-control argument and are null when
// those fields are not integers. zipf comes from the logged command
// line and is null if the log has none. name appears in error
// messages.
func ParseRunLog(r io.Reader, name string) (*rectable.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	sections := strings.Split(string(data), commitMarker)
	var b rectable.Builder
	for i, sec := range sections[1:] {
		rec, err := parseSection(sec)
		if err != nil {
			return nil, fmt.Errorf("%s: section %d: %w", name, i+1, err)
		}
		if err := b.Add(rec); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return b.Done(), nil
}

func parseSection(sec string) (*benchlog.Record, error) {
	header, body, _ := strings.Cut(sec, "\n")
	_, cc, ok := strings.Cut(header, configMarker)
	cc = strings.TrimSpace(cc)
	if !ok || cc == "" {
		return nil, fmt.Errorf("missing %s in %q", configMarker, header)
	}
	cmd, _, _ := strings.Cut(body, "\n")

	commits := matches(commitRE, body)
	if len(commits) == 0 {
		return nil, &OutputError{Command: cc, Metric: "commit", Output: body}
	}
	executions := matches(executionRE, body)
	if len(executions) == 0 {
		return nil, &OutputError{Command: cc, Metric: "execution", Output: body}
	}
	commit := stats.Mean(commits)

	rec := benchlog.NewRecord()
	rec.Set(benchlog.FieldProtocol, benchlog.StringValue(Protocol(cc)))
	fields := strings.Split(cc, ":")
	rec.Set(benchlog.FieldThreads, intField(fields, 1))
	rec.Set(FieldTablePartition, intField(fields, 2))
	if z, ok := commandZipf(cmd); ok {
		rec.Set(benchlog.FieldZipf, benchlog.FloatValue(z))
	}
	rec.Set(benchlog.FieldCommit, benchlog.FloatValue(commit))
	rec.Set(benchlog.FieldAbort, benchlog.FloatValue(stats.Mean(executions)-commit))

	lat := make(map[int][]float64)
	for _, sub := range latencyRE.FindAllStringSubmatch(body, -1) {
		p, _ := strconv.Atoi(sub[1])
		us, _ := strconv.ParseFloat(sub[2], 64)
		lat[p] = append(lat[p], us)
	}
	for _, p := range Percentiles {
		if xs := lat[p]; len(xs) > 0 {
			rec.Set(LatencyField(p), benchlog.FloatValue(stats.Mean(xs)))
		}
	}
	return rec, nil
}

// commandZipf returns the zipf parameter of a logged command line
// "binary cc workload:keys:zipf duration".
func commandZipf(cmd string) (float64, bool) {
	f := strings.Fields(cmd)
	if len(f) < 4 {
		return 0, false
	}
	w := strings.Split(f[len(f)-2], ":")
	if len(w) != 3 {
		return 0, false
	}
	z, err := strconv.ParseFloat(w[2], 64)
	return z, err == nil
}

func matches(re *regexp.Regexp, s string) []float64 {
	var xs []float64
	for _, sub := range re.FindAllStringSubmatch(s, -1) {
		if x, err := strconv.ParseFloat(sub[1], 64); err == nil {
			xs = append(xs, x)
		}
	}
	return xs
}

func intField(fields []string, i int) benchlog.Value {
	if i >= len(fields) {
		return benchlog.Value{}
	}
	n, err := strconv.ParseInt(fields[i], 10, 64)
	if err != nil {
		return benchlog.Value{}
	}
	return benchlog.IntValue(n)
}
