// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package figure draws the standard benchmark figures: one series per
// protocol, styled by a palette schema, as lines or grouped bars.
package figure

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spectrum-cc/benchviz/benchlog"
	"github.com/spectrum-cc/benchviz/chart"
	"github.com/spectrum-cc/benchviz/legend"
	"github.com/spectrum-cc/benchviz/palette"
	"github.com/spectrum-cc/benchviz/rectable"
	"github.com/spectrum-cc/benchviz/tickstep"
)

// A Kind selects how series are drawn.
type Kind int

const (
	Lines Kind = iota
	Bars
)

// BarWidth is the width of one bar in category units.
const BarWidth = 0.14

// A Figure describes one chart of column Y against column X.
type Figure struct {
	Kind   Kind
	Schema palette.Schema
	X, Y   string

	XLabel, YLabel string
	Suffix         tickstep.Suffix
	Overrides      tickstep.Overrides

	// TickEachX puts an X tick at every distinct X value of a line
	// chart. Bar charts always label each category.
	TickEachX bool

	// Legend orders the legend; nil means legend.Default.
	Legend *legend.Orderer
	Chart  chart.Options
}

// Draw renders f from the rows of t to path.
//
// Protocol names from older result files are first replaced by their
// display names (see palette.Display). Rows are averaged per
// (protocol, X). Series are drawn in schema
// order, followed by any protocols of t the schema lacks. A protocol
// with no usable points is not drawn.
func Draw(t *rectable.Table, f Figure, path string) (tickstep.Spec, error) {
	for _, col := range []string{benchlog.FieldProtocol, f.X, f.Y} {
		if !t.HasColumn(col) {
			return tickstep.Spec{}, fmt.Errorf("%s: no %q column", path, col)
		}
	}
	t, err := displayNames(t)
	if err != nil {
		return tickstep.Spec{}, err
	}
	mean, err := t.Mean([]string{benchlog.FieldProtocol, f.X}, f.Y)
	if err != nil {
		return tickstep.Spec{}, err
	}
	series, err := mean.Series(benchlog.FieldProtocol, f.X, f.Y)
	if err != nil {
		return tickstep.Spec{}, err
	}
	byProto := make(map[string]rectable.Series)
	var protos []string
	for _, s := range series {
		byProto[s.Label] = s
		protos = append(protos, s.Label)
	}

	type styled struct {
		rectable.Series
		entry palette.Entry
	}
	var drawn []styled
	for _, e := range f.Schema.Extend(protos) {
		if s, ok := byProto[e.Protocol]; ok {
			drawn = append(drawn, styled{s, e})
		}
	}

	sess := chart.New(f.Chart)
	fo := chart.FinalizeOptions{
		XLabel:    f.XLabel,
		YLabel:    f.YLabel,
		Suffix:    f.Suffix,
		Overrides: f.Overrides,
		Legend:    f.Legend,
	}
	switch f.Kind {
	case Lines:
		for _, d := range drawn {
			err := sess.Line(chart.Series{X: d.X, Y: d.Y, Color: d.entry.Color, Label: d.entry.Name()})
			if err != nil {
				return tickstep.Spec{}, err
			}
		}
		if f.TickEachX {
			var all [][]float64
			for _, d := range drawn {
				all = append(all, d.X)
			}
			fo.XTicks = distinct(all...)
		}
	case Bars:
		var all [][]float64
		for _, d := range drawn {
			all = append(all, d.X)
		}
		cats := distinct(all...)
		index := make(map[float64]int, len(cats))
		for i, x := range cats {
			index[x] = i
			fo.XTicks = append(fo.XTicks, float64(i))
			fo.XTickLabels = append(fo.XTickLabels, strconv.FormatFloat(x, 'g', -1, 64))
		}
		center := float64(len(drawn)-1) / 2
		for i, d := range drawn {
			xs := make([]float64, len(d.X))
			for j, x := range d.X {
				xs[j] = float64(index[x]) + (float64(i)-center)*BarWidth
			}
			err := sess.Bar(chart.Bar{
				X:     xs,
				Y:     d.Y,
				Color: d.entry.Color,
				Hatch: palette.Hatch(i),
				Width: BarWidth,
				Label: d.entry.Name(),
			})
			if err != nil {
				return tickstep.Spec{}, err
			}
		}
	default:
		return tickstep.Spec{}, fmt.Errorf("unknown figure kind %d", f.Kind)
	}
	return sess.Finalize(path, fo)
}

// displayNames renames the protocols of t to their display names.
// A data set holding the second partial-revert variant is named the
// pre-scheduling way, so that both partial variants stay distinct.
func displayNames(t *rectable.Table) (*rectable.Table, error) {
	pre := false
	for _, v := range t.Unique(benchlog.FieldProtocol) {
		if strings.EqualFold(v.Str(), "sparkle partial-v2") {
			pre = true
		}
	}
	return t.Derive(benchlog.FieldProtocol, func(rec *benchlog.Record) benchlog.Value {
		return benchlog.StringValue(palette.Display(rec.Protocol(), pre))
	})
}

// distinct returns the sorted distinct values of xss.
func distinct(xss ...[]float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, xs := range xss {
		for _, x := range xs {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
	}
	sort.Float64s(out)
	return out
}
