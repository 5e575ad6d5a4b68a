// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchlog converts benchmark logs into a table.
//
// Usage:
//
//	benchlog [--format csv|table] [--runlog] [-o file] files...
//
// Each input is a benchmark log, with one '@'-delimited block per run,
// or a CSV file from an earlier conversion. With --runlog the inputs are
// raw logs written by benchrun instead. The rows of all inputs are
// concatenated and written as CSV (the default) or as an aligned text
// table.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spectrum-cc/benchviz/internal/choice"
	"github.com/spectrum-cc/benchviz/internal/input"
	"github.com/spectrum-cc/benchviz/rectable"
	"github.com/spectrum-cc/benchviz/runner"
	"github.com/spf13/pflag"
)

func main() {
	log.SetPrefix("benchlog: ")
	log.SetFlags(0)
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(stdout, stderr io.Writer, args []string) error {
	fs := pflag.NewFlagSet("benchlog", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	format := choice.Var(fs, "format", "", "csv", "output format", "csv", "table")
	runlog := fs.Bool("runlog", false, "read raw benchrun logs")
	out := fs.StringP("output", "o", "", "write to `file` instead of standard output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: benchlog [flags] files...\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := choice.Validate(format); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no input files")
	}

	var t *rectable.Table
	var err error
	if *runlog {
		t, err = loadRunLogs(fs.Args())
	} else {
		t, err = input.LoadAll(fs.Args()...)
	}
	if err != nil {
		return err
	}

	if *out == "" {
		return write(stdout, t, format.Get())
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := write(f, t, format.Get()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func write(w io.Writer, t *rectable.Table, format string) error {
	if format == "table" {
		return t.Print(w)
	}
	return t.WriteCSV(w)
}

func loadRunLogs(paths []string) (*rectable.Table, error) {
	var tables []*rectable.Table
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, &input.SourceError{Path: path, Err: err}
		}
		t, err := runner.ParseRunLog(f, path)
		f.Close()
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return rectable.Concat(tables...), nil
}
