// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rectable

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/spectrum-cc/benchviz/benchlog"
)

// A Series is the (X, Y) data of one group of rows, typically one
// protocol.
type Series struct {
	Label string
	X, Y  []float64
}

// columnKind summarizes the non-null values of col.
func (t *Table) columnKind(col string) benchlog.Kind {
	kind := benchlog.Null
	for _, rec := range t.rows {
		k := rec.Get(col).Kind()
		switch {
		case k == benchlog.Null || k == kind:
		case kind == benchlog.Null:
			kind = k
		case k == benchlog.String || kind == benchlog.String:
			return benchlog.String
		default:
			// Mixed Int and Float.
			kind = benchlog.Float
		}
	}
	return kind
}

// gg converts the named columns of t into a go-gg table. Columns in
// floats, and any column holding Floats or nulls, become []float64
// with NaN for null. String columns become []string with "" for null.
// Columns of only Ints become []int64.
func (t *Table) gg(cols []string, floats map[string]bool) (*table.Table, error) {
	b := table.NewBuilder(nil)
	for _, col := range cols {
		if !t.HasColumn(col) {
			return nil, fmt.Errorf("unknown column %q", col)
		}
		kind := t.columnKind(col)
		hasNull := false
		for _, rec := range t.rows {
			if rec.Get(col).IsNull() {
				hasNull = true
				break
			}
		}
		switch {
		case kind == benchlog.String:
			if floats[col] {
				return nil, fmt.Errorf("column %q is not numeric", col)
			}
			xs := make([]string, len(t.rows))
			for i, rec := range t.rows {
				xs[i] = rec.Get(col).String()
			}
			b.Add(col, xs)
		case kind == benchlog.Int && !hasNull && !floats[col]:
			xs := make([]int64, len(t.rows))
			for i, rec := range t.rows {
				xs[i], _ = rec.Get(col).Int()
			}
			b.Add(col, xs)
		default:
			xs := make([]float64, len(t.rows))
			for i, rec := range t.rows {
				v, ok := rec.Get(col).Float()
				if !ok {
					v = math.NaN()
				}
				xs[i] = v
			}
			b.Add(col, xs)
		}
	}
	return b.Done(), nil
}

// fromGG converts a go-gg grouping back into a Table, mapping NaN
// to null. Every row must carry a protocol.
func fromGG(g table.Grouping) (*Table, error) {
	var b Builder
	for _, gid := range g.Tables() {
		t := g.Table(gid)
		recs := make([]*benchlog.Record, t.Len())
		for i := range recs {
			recs[i] = benchlog.NewRecord()
		}
		for _, col := range g.Columns() {
			switch xs := t.MustColumn(col).(type) {
			case []string:
				for i, x := range xs {
					recs[i].Set(col, benchlog.ParseValue(x))
				}
			case []int64:
				for i, x := range xs {
					recs[i].Set(col, benchlog.IntValue(x))
				}
			case []float64:
				for i, x := range xs {
					v := benchlog.FloatValue(x)
					if math.IsNaN(x) {
						v = benchlog.Value{}
					}
					recs[i].Set(col, v)
				}
			default:
				return nil, fmt.Errorf("column %q has unexpected type %T", col, xs)
			}
		}
		for _, rec := range recs {
			if err := b.Add(rec); err != nil {
				return nil, err
			}
		}
	}
	return b.Done(), nil
}

// Series splits t by the distinct values of column group, in order of
// first appearance, and returns the (x, y) points of each group in row
// order. Rows where x or y is null are omitted; a group left with no
// points is omitted entirely.
func (t *Table) Series(group, x, y string) ([]Series, error) {
	if len(t.rows) == 0 {
		return nil, nil
	}
	g, err := t.gg([]string{group, x, y}, map[string]bool{x: true, y: true})
	if err != nil {
		return nil, err
	}
	var grouped table.Grouping = table.GroupBy(g, group)
	grouped = table.Filter(grouped, func(x, y float64) bool {
		return !math.IsNaN(x) && !math.IsNaN(y)
	}, x, y)

	var out []Series
	for _, gid := range grouped.Tables() {
		sub := grouped.Table(gid)
		if sub.Len() == 0 {
			continue
		}
		out = append(out, Series{
			Label: fmt.Sprint(gid.Label()),
			X:     sub.MustColumn(x).([]float64),
			Y:     sub.MustColumn(y).([]float64),
		})
	}
	return out, nil
}

// Mean groups t by the key columns and averages each of cols within
// each group. The result has one row per distinct key, in order of
// first appearance, holding the keys followed by the means. A mean
// over a group containing a null is null.
//
// keys must include the protocol column.
func (t *Table) Mean(keys []string, cols ...string) (*Table, error) {
	if !contains(keys, benchlog.FieldProtocol) {
		return nil, fmt.Errorf("mean keys %q do not include %q", keys, benchlog.FieldProtocol)
	}
	if len(t.rows) == 0 {
		return &Table{}, nil
	}
	floats := make(map[string]bool)
	for _, c := range cols {
		floats[c] = true
	}
	g, err := t.gg(append(append([]string(nil), keys...), cols...), floats)
	if err != nil {
		return nil, err
	}
	var agg table.Grouping = ggstat.Agg(keys...)(ggstat.AggMean(cols...)).F(g)
	for _, c := range cols {
		agg = table.Rename(agg, "mean "+c, c)
	}
	return fromGG(agg)
}

// Print writes t to w as an aligned text table. Null cells print as
// empty.
func (t *Table) Print(w io.Writer) error {
	if len(t.rows) == 0 {
		_, err := fmt.Fprintln(w, strings.Join(t.columns, "  "))
		return err
	}
	b := table.NewBuilder(nil)
	for _, col := range t.columns {
		kind := t.columnKind(col)
		complete := true
		for _, rec := range t.rows {
			if rec.Get(col).IsNull() {
				complete = false
				break
			}
		}
		switch {
		case complete && kind == benchlog.Int:
			xs := make([]int64, len(t.rows))
			for i, rec := range t.rows {
				xs[i], _ = rec.Get(col).Int()
			}
			b.Add(col, xs)
		case complete && kind == benchlog.Float:
			xs := make([]float64, len(t.rows))
			for i, rec := range t.rows {
				xs[i], _ = rec.Get(col).Float()
			}
			b.Add(col, xs)
		default:
			xs := make([]string, len(t.rows))
			for i, rec := range t.rows {
				xs[i] = rec.Get(col).String()
			}
			b.Add(col, xs)
		}
	}
	return table.Fprint(w, b.Done())
}
