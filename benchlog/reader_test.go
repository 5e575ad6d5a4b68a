// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func scanAll(t *testing.T, data string) ([]*Record, error) {
	t.Helper()
	r := NewReader(strings.NewReader(data), "test")
	var out []*Record
	for r.Scan() {
		out = append(out, r.Record())
	}
	return out, r.Err()
}

func protocols(recs []*Record) []string {
	var out []string
	for _, rec := range recs {
		out = append(out, rec.Protocol())
	}
	return out
}

func TestReader(t *testing.T) {
	const log = `#COMMIT-1a2b3c CONFIG-Spectrum:30:9973:COPYONWRITE
build output that mentions threads=99 but precedes the first run
@Spectrum;threads=30,zipf=1.1] commit: 500.0 abort: 10.0
@Sparkle;threads=30,zipf=1.1] commit: 400.0 abort: 20.0
@AriaFB;threads=30,zipf=1.1
] commit: 300 abort: 30
`
	recs, err := scanAll(t, log)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Spectrum", "Sparkle", "AriaFB"}, protocols(recs)); diff != "" {
		t.Errorf("protocols (-want +got):\n%s", diff)
	}
	for i, rec := range recs {
		if got := rec.Get(FieldThreads); got != IntValue(30) {
			t.Errorf("block %d threads = %v, want 30", i, got)
		}
	}
	if got := recs[2].Get(FieldCommit); got != IntValue(300) && got != FloatValue(300) {
		t.Errorf("block 2 commit = %v, want 300", got)
	}
}

func TestReaderEmpty(t *testing.T) {
	for _, data := range []string{"", "no runs here\n", "threads=4 commit: 5"} {
		recs, err := scanAll(t, data)
		if err != nil {
			t.Errorf("%q: unexpected error %v", data, err)
		}
		if len(recs) != 0 {
			t.Errorf("%q: got %d records, want 0", data, len(recs))
		}
	}
}

func TestReaderError(t *testing.T) {
	const log = "@Spectrum;threads=30@Sparkle;threads=thirty@Aria;threads=30"
	recs, err := scanAll(t, log)
	if len(recs) != 1 {
		t.Errorf("got %d records before the error, want 1", len(recs))
	}
	var be *BlockError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want *BlockError", err)
	}
	if be.Block != 1 || be.Field != FieldThreads || be.FileName != "test" {
		t.Errorf("error = %+v, want block 1, field %q, file test", be, FieldThreads)
	}
	if want := `test: block 1: field "threads": `; !strings.HasPrefix(be.Error(), want) {
		t.Errorf("Error() = %q, want prefix %q", be.Error(), want)
	}
}

func TestReaderEmptyBlock(t *testing.T) {
	_, err := scanAll(t, "@Aria;threads=1@@Aria;threads=2")
	var be *BlockError
	if !errors.As(err, &be) || be.Block != 1 || be.Field != FieldProtocol {
		t.Errorf("error = %v, want missing protocol in block 1", err)
	}
}
