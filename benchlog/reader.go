// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchlog parses the textual output of the transaction
// benchmark into Records.
//
// A log is a sequence of runs. Each run starts with '@' and is
// followed by the protocol name, a ';', and a free-form list of
// metrics such as "threads=30" or "commit: 12345.6". Text before the
// first '@' is ignored. Within a run, "] " separates the main section
// from per-interval side sections:
//
//	@Spectrum;threads=30,zipf=1.1] commit: 500 abort: 10] commit: 480 abort: 12
package benchlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// A Reader reads benchmark runs from a log.
//
// Its API is modeled on bufio.Scanner:
//
//	r := benchlog.NewReader(f, "bench.log")
//	for r.Scan() {
//		rec := r.Record()
//		...
//	}
//	if err := r.Err(); err != nil {
//		...
//	}
//
// Scan stops at the first block that fails to parse.
type Reader struct {
	s        *bufio.Scanner
	fileName string
	block    int
	rec      *Record
	err      error
}

// A BlockError reports a run that could not be parsed.
type BlockError struct {
	FileName string
	Block    int    // index of the run in its log, or -1 if unknown
	Field    string // field that is missing or malformed
	Msg      string
	Err      error // underlying conversion error, if any
}

func (e *BlockError) Error() string {
	pos := ""
	if e.FileName != "" {
		pos = e.FileName + ": "
	}
	if e.Block >= 0 {
		pos += fmt.Sprintf("block %d: ", e.Block)
	}
	return fmt.Sprintf("%sfield %q: %s", pos, e.Field, e.Msg)
}

func (e *BlockError) Unwrap() error { return e.Err }

// maxBlock bounds the size of a single run. Runs with thousands of
// per-interval sections are still far below this.
const maxBlock = 64 << 20

// NewReader constructs a Reader for the log in r. fileName is used in
// error messages only.
func NewReader(r io.Reader, fileName string) *Reader {
	if fileName == "" {
		fileName = "<unknown>"
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), maxBlock)
	s.Split(splitBlocks())
	return &Reader{s: s, fileName: fileName, block: -1}
}

// splitBlocks returns a bufio.SplitFunc that yields the text of each
// '@'-delimited run, discarding everything before the first '@'.
func splitBlocks() bufio.SplitFunc {
	started := false
	return func(data []byte, atEOF bool) (advance int, token []byte, err error) {
		if !started {
			i := bytes.IndexByte(data, blockMarker)
			if i < 0 {
				// Preamble only so far.
				return len(data), nil, nil
			}
			started = true
			return i + 1, nil, nil
		}
		if i := bytes.IndexByte(data, blockMarker); i >= 0 {
			return i + 1, data[:i], nil
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

// Scan advances to the next run and reports whether one was parsed.
// It returns false at the end of the input or on the first error; call
// Err to distinguish the two.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	r.rec = nil
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			r.err = fmt.Errorf("%s: %w", r.fileName, err)
		}
		return false
	}
	r.block++
	rec, err := ParseBlock(r.s.Text())
	if err != nil {
		if be, ok := err.(*BlockError); ok {
			be.FileName = r.fileName
			be.Block = r.block
		}
		r.err = err
		return false
	}
	r.rec = rec
	return true
}

// Record returns the run parsed by the most recent call to Scan.
func (r *Reader) Record() *Record {
	return r.rec
}

// Block returns the index of the most recently scanned run.
func (r *Reader) Block() int {
	return r.block
}

// Err returns the first error encountered by Scan.
func (r *Reader) Err() error {
	return r.err
}
