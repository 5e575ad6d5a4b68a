// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rectable assembles benchmark Records into tables.
//
// A Table is an ordered list of Records whose column set is the union
// of every field seen in any Record. A Record that lacks a column
// reads as null in that column. Tables are built either from
// benchmark logs (Build) or from CSV files (ReadCSV); both produce
// the same Table.
package rectable

import (
	"fmt"
	"io"

	"github.com/spectrum-cc/benchviz/benchlog"
)

// A Table is an ordered sequence of Records.
//
// A Table is not modified once built; methods that transform a Table
// return a new one.
type Table struct {
	rows    []*benchlog.Record
	columns []string
	colSet  map[string]bool
}

// A Builder constructs a Table one Record at a time.
//
// The zero value of a Builder represents an empty Table.
type Builder struct {
	t Table
}

// Add appends rec to the Table being built. Every Record must carry
// a protocol.
func (b *Builder) Add(rec *benchlog.Record) error {
	if rec.Get(benchlog.FieldProtocol).IsNull() {
		return fmt.Errorf("row %d: %q is null", len(b.t.rows), benchlog.FieldProtocol)
	}
	if b.t.colSet == nil {
		b.t.colSet = make(map[string]bool)
	}
	for _, name := range rec.Names() {
		if !b.t.colSet[name] {
			b.t.colSet[name] = true
			b.t.columns = append(b.t.columns, name)
		}
	}
	b.t.rows = append(b.t.rows, rec)
	return nil
}

// mustAdd adds a row that already belongs to a Table, or one built
// with a protocol, so Add cannot fail.
func (b *Builder) mustAdd(rec *benchlog.Record) {
	if err := b.Add(rec); err != nil {
		panic("rectable: " + err.Error())
	}
}

// Done returns the constructed Table and resets b.
func (b *Builder) Done() *Table {
	t := b.t
	b.t = Table{}
	return &t
}

// Build parses every run in the benchmark log r into a Table.
// fileName is used in error messages only.
//
// If any run fails to parse, Build returns no Table and an error
// (a *benchlog.BlockError) identifying the run.
func Build(r io.Reader, fileName string) (*Table, error) {
	var b Builder
	lr := benchlog.NewReader(r, fileName)
	for lr.Scan() {
		if err := b.Add(lr.Record()); err != nil {
			return nil, err
		}
	}
	if err := lr.Err(); err != nil {
		return nil, err
	}
	return b.Done(), nil
}

// Len returns the number of rows in t.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column names of t in first-seen order.
// The caller must not modify the returned slice.
func (t *Table) Columns() []string {
	return t.columns
}

// HasColumn reports whether col is a column of t.
func (t *Table) HasColumn(col string) bool {
	return t.colSet[col]
}

// Row returns row i of t.
func (t *Table) Row(i int) *benchlog.Record {
	return t.rows[i]
}

// Value returns the value of column col in row i. It is null if row i
// never observed col.
func (t *Table) Value(i int, col string) benchlog.Value {
	return t.rows[i].Get(col)
}

// Filter returns the rows of t whose column col equals v.
// The result keeps the column set of t.
func (t *Table) Filter(col string, v benchlog.Value) *Table {
	out := &Table{columns: t.columns, colSet: t.colSet}
	for _, rec := range t.rows {
		if rec.Get(col) == v {
			out.rows = append(out.rows, rec)
		}
	}
	return out
}

// Unique returns the distinct non-null values of col in the order they
// first appear.
func (t *Table) Unique(col string) []benchlog.Value {
	var out []benchlog.Value
	seen := make(map[benchlog.Value]bool)
	for _, rec := range t.rows {
		v := rec.Get(col)
		if v.IsNull() || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Derive returns a copy of t with an added (or replaced) column name
// computed from each row by f. It fails if f leaves a row without a
// protocol.
func (t *Table) Derive(name string, f func(rec *benchlog.Record) benchlog.Value) (*Table, error) {
	var b Builder
	for _, rec := range t.rows {
		c := rec.Clone()
		c.Set(name, f(rec))
		if err := b.Add(c); err != nil {
			return nil, fmt.Errorf("deriving %q: %w", name, err)
		}
	}
	out := b.Done()
	out.mergeColumns(t.columns)
	return out, nil
}

// Ratio returns a Derive function computing num/den, or null if either
// is null or den is zero.
func Ratio(num, den string) func(rec *benchlog.Record) benchlog.Value {
	return func(rec *benchlog.Record) benchlog.Value {
		n, ok1 := rec.Get(num).Float()
		d, ok2 := rec.Get(den).Float()
		if !ok1 || !ok2 || d == 0 {
			return benchlog.Value{}
		}
		return benchlog.FloatValue(n / d)
	}
}

// WithBaseline returns a copy of t with one extra row per distinct
// value of x, each belonging to protocol and carrying value in column
// y. It is used to draw a constant reference series, such as a serial
// execution, alongside measured ones.
func (t *Table) WithBaseline(protocol, x, y string, value float64) *Table {
	var b Builder
	for _, rec := range t.rows {
		b.mustAdd(rec)
	}
	for _, xv := range t.Unique(x) {
		rec := benchlog.NewRecord()
		rec.Set(benchlog.FieldProtocol, benchlog.StringValue(protocol))
		rec.Set(x, xv)
		rec.Set(y, benchlog.FloatValue(value))
		b.mustAdd(rec)
	}
	out := b.Done()
	out.mergeColumns(t.columns)
	return out
}

// Concat returns the rows of all tables in order.
func Concat(tables ...*Table) *Table {
	var b Builder
	for _, t := range tables {
		for _, rec := range t.rows {
			b.mustAdd(rec)
		}
	}
	out := b.Done()
	for _, t := range tables {
		out.mergeColumns(t.columns)
	}
	return out
}

// mergeColumns adds cols to t's column set. A Table keeps a column
// even after filtering leaves no row that observed it.
func (t *Table) mergeColumns(cols []string) {
	if t.colSet == nil {
		t.colSet = make(map[string]bool)
	}
	var extra []string
	for _, c := range cols {
		if !t.colSet[c] {
			t.colSet[c] = true
			extra = append(extra, c)
		}
	}
	if len(extra) == 0 {
		return
	}
	// Preserve the source order for the columns t already has.
	order := append([]string(nil), cols...)
	for _, c := range t.columns {
		if !contains(cols, c) {
			order = append(order, c)
		}
	}
	t.columns = order
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
