// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package input

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/spectrum-cc/benchviz/benchlog"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o666); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEquivalent(t *testing.T) {
	logPath := write(t, "bench.log", "@Spectrum;threads=30,zipf=1.1] commit: 500.0 abort: 10.0\n")
	csvPath := write(t, "bench.csv", "protocol,threads,zipf,commit,abort\nSpectrum,30,1.1,500.0,10.0\n")

	fromLog, err := Load(logPath)
	if err != nil {
		t.Fatal(err)
	}
	fromCSV, err := Load(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, col := range fromCSV.Columns() {
		if a, b := fromLog.Value(0, col), fromCSV.Value(0, col); a != b {
			t.Errorf("column %q: log %v (%s), csv %v (%s)", col, a, a.Kind(), b, b.Kind())
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	var se *SourceError
	if !errors.As(err, &se) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want SourceError wrapping ErrNotExist", err)
	}
}

func TestReadFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := Read(iotest.ErrReader(boom), "broken.log")
	var se *SourceError
	if !errors.As(err, &se) || !errors.Is(err, boom) || se.Path != "broken.log" {
		t.Errorf("error = %v, want SourceError for broken.log", err)
	}
}

func TestParseErrorIsNotSourceError(t *testing.T) {
	_, err := Read(strings.NewReader("@Aria;threads=x"), "bad.log")
	var se *SourceError
	if errors.As(err, &se) {
		t.Errorf("parse error reported as SourceError: %v", err)
	}
	var be *benchlog.BlockError
	if !errors.As(err, &be) {
		t.Errorf("error = %v, want *benchlog.BlockError", err)
	}
}

func TestLoadAll(t *testing.T) {
	a := write(t, "a.log", "@Spectrum;threads=1\n@Sparkle;threads=1\n")
	b := write(t, "b.csv", "protocol,threads,window size\nAria,2,16\n")
	tab, err := LoadAll(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 3 {
		t.Fatalf("got %d rows, want 3", tab.Len())
	}
	if got := tab.Value(2, benchlog.FieldWindowSize); got != benchlog.IntValue(16) {
		t.Errorf("row 2 window size = %v, want 16", got)
	}
	if got := tab.Value(0, benchlog.FieldWindowSize); !got.IsNull() {
		t.Errorf("row 0 window size = %v, want null", got)
	}
}
