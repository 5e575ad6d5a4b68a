// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rectable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spectrum-cc/benchviz/benchlog"
)

// ReadCSV reads a Table from CSV. The first row names the columns.
// Each cell is parsed by benchlog.ParseValue, so an empty cell is
// null. A column with an empty name, such as the row index written
// by many dataframe libraries, is skipped.
//
// fileName is used in error messages only.
func ReadCSV(r io.Reader, fileName string) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return &Table{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	var b Builder
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		rec := benchlog.NewRecord()
		for i, name := range header {
			if name == "" {
				continue
			}
			rec.Set(name, benchlog.ParseValue(row[i]))
		}
		if err := b.Add(rec); err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%s:%d: %w", fileName, line, err)
		}
	}
	t := b.Done()
	var cols []string
	for _, name := range header {
		if name != "" {
			cols = append(cols, name)
		}
	}
	t.mergeColumns(cols)
	return t, nil
}

// WriteCSV writes t to w as CSV, with a header row of column names
// followed by one row per Record. Null cells are empty. Float cells
// always carry a decimal point so that ReadCSV restores their kind.
func (t *Table) WriteCSV(w io.Writer) error {
	if len(t.columns) == 0 {
		return errors.New("table has no columns")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	row := make([]string, len(t.columns))
	for _, rec := range t.rows {
		for i, col := range t.columns {
			row[i] = cell(rec.Get(col))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v benchlog.Value) string {
	s := v.String()
	if v.Kind() == benchlog.Float && !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
