// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spectrum-cc/benchviz/benchlog"
	"github.com/spectrum-cc/benchviz/internal/choice"
	"github.com/spectrum-cc/benchviz/internal/diff"
	"github.com/spectrum-cc/benchviz/internal/input"
)

func TestGolden(t *testing.T) {
	golden(t, "runs.log.csv", "testdata/runs.log")
	golden(t, "runs.csv", "--runlog", "testdata/runs.runlog")
}

func golden(t *testing.T, name string, args ...string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	t.Logf("benchlog %s", strings.Join(args, " "))
	if err := run(&stdout, &stderr, args); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	d, err := diff.Golden(filepath.Join("testdata", name+".golden"), stdout.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if d != "" {
		t.Errorf("%s mismatch:\n%s", name, d)
	}
}

func TestCSVInputMatchesLog(t *testing.T) {
	// Converting the CSV form of a log again reproduces it.
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "runs.csv")
	if err := run(new(bytes.Buffer), new(bytes.Buffer), []string{"-o", csvPath, "testdata/runs.log"}); err != nil {
		t.Fatal(err)
	}
	var again bytes.Buffer
	if err := run(&again, new(bytes.Buffer), []string{csvPath}); err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if d := diff.Diff(string(want), again.String()); d != "" {
		t.Errorf("CSV round trip mismatch:\n%s", d)
	}
}

func TestTableFormat(t *testing.T) {
	var stdout bytes.Buffer
	if err := run(&stdout, new(bytes.Buffer), []string{"--format=table", "--runlog", "testdata/runs.runlog"}); err != nil {
		t.Fatal(err)
	}
	out := stdout.String()
	for _, s := range []string{"protocol", "Spectrum", "AriaFB", "latency_99"} {
		if !strings.Contains(out, s) {
			t.Errorf("table output lacks %q:\n%s", s, out)
		}
	}
}

func TestLongFlags(t *testing.T) {
	// Long options take two dashes; a single dash starts shorthands.
	args := []string{"--runlog", "--format", "table", "--output", filepath.Join(t.TempDir(), "out.txt"), "testdata/runs.runlog"}
	if err := run(new(bytes.Buffer), new(bytes.Buffer), args); err != nil {
		t.Errorf("benchlog %s: %v", strings.Join(args, " "), err)
	}
	err := run(new(bytes.Buffer), new(bytes.Buffer), []string{"-runlog", "testdata/runs.runlog"})
	if err == nil || !strings.Contains(err.Error(), "shorthand") {
		t.Errorf("single-dash -runlog: error = %v, want unknown shorthand", err)
	}
}

func TestErrors(t *testing.T) {
	var ie *choice.InvalidError
	if err := run(new(bytes.Buffer), new(bytes.Buffer), []string{"--format=json", "testdata/missing.log"}); !errors.As(err, &ie) {
		t.Errorf("bad format: error = %v, want *choice.InvalidError", err)
	}

	if err := run(new(bytes.Buffer), new(bytes.Buffer), nil); err == nil {
		t.Errorf("no inputs: no error")
	}

	var se *input.SourceError
	if err := run(new(bytes.Buffer), new(bytes.Buffer), []string{"testdata/missing.log"}); !errors.As(err, &se) {
		t.Errorf("missing file: error = %v, want *input.SourceError", err)
	}
	if err := run(new(bytes.Buffer), new(bytes.Buffer), []string{"--runlog", "testdata/missing.log"}); !errors.As(err, &se) {
		t.Errorf("missing run log: error = %v, want *input.SourceError", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.log")
	if err := os.WriteFile(bad, []byte("@Aria;threads=many\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	var be *benchlog.BlockError
	err := run(new(bytes.Buffer), new(bytes.Buffer), []string{bad})
	if !errors.As(err, &be) || be.Block != 0 || be.Field != benchlog.FieldThreads {
		t.Errorf("malformed block: error = %v, want BlockError for threads in block 0", err)
	}
}
