// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package input loads benchmark result files into tables.
package input

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spectrum-cc/benchviz/rectable"
)

// A SourceError reports a result file that could not be read.
// Errors in the content of a readable file are returned unwrapped.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string { return "reading " + e.Path + ": " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }

// Load reads the result file at path. Files ending in .csv are read
// as tables; any other file is parsed as a benchmark log.
func Load(path string) (*rectable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{path, err}
	}
	defer f.Close()
	return Read(f, path)
}

// Read is like Load but reads from r. name selects the format and
// appears in error messages.
func Read(r io.Reader, name string) (*rectable.Table, error) {
	r = &sourceReader{r: r, path: name}
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return rectable.ReadCSV(r, name)
	}
	return rectable.Build(r, name)
}

// LoadAll loads every path and concatenates the rows in order.
func LoadAll(paths ...string) (*rectable.Table, error) {
	var tables []*rectable.Table
	for _, p := range paths {
		t, err := Load(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return rectable.Concat(tables...), nil
}

// sourceReader marks read failures as SourceErrors so they can be
// told apart from parse errors after the parsers wrap them.
type sourceReader struct {
	r    io.Reader
	path string
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = &SourceError{s.path, err}
	}
	return n, err
}
