// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"errors"
	"testing"
)

func mustParse(t *testing.T, block string) *Record {
	t.Helper()
	rec, err := ParseBlock(block)
	if err != nil {
		t.Fatalf("ParseBlock(%q): %v", block, err)
	}
	return rec
}

func checkFields(t *testing.T, rec *Record, want map[string]Value) {
	t.Helper()
	for name, w := range want {
		if !rec.Has(name) {
			t.Errorf("field %q missing", name)
			continue
		}
		if got := rec.Get(name); got != w {
			t.Errorf("field %q = %v (%s), want %v (%s)", name, got, got.Kind(), w, w.Kind())
		}
	}
}

func TestParseBlock(t *testing.T) {
	for _, test := range []struct {
		name  string
		block string
		want  map[string]Value
	}{
		{
			name:  "threads",
			block: "Spectrum;threads=30,zipf=1.1",
			want: map[string]Value{
				FieldProtocol: StringValue("Spectrum"),
				FieldThreads:  IntValue(30),
				FieldZipf:     FloatValue(1.1),
				FieldCommit:   {},
			},
		},
		{
			name:  "end to end",
			block: "Spectrum;threads=30,zipf=1.1] commit: 500.0 abort: 10.0",
			want: map[string]Value{
				FieldProtocol:    StringValue("Spectrum"),
				FieldThreads:     IntValue(30),
				FieldZipf:        FloatValue(1.1),
				FieldCommit:      FloatValue(500),
				FieldAbort:       FloatValue(10),
				CommitAtField(0): FloatValue(500),
				AbortAtField(0):  FloatValue(10),
			},
		},
		{
			name:  "heuristic revert length",
			block: "Aria;threads=8 commit: 100 abort: 12.5",
			want: map[string]Value{
				FieldAbort:                FloatValue(12.5),
				FieldRevertLength:         FloatValue(125),
				FieldOriginalRevertLength: FloatValue(125),
			},
		},
		{
			name:  "histogram revert length",
			block: "Spectrum;threads=8 abort: 7 partial revert 0: 2.0 partial revert 1: 3.0",
			want: map[string]Value{
				FieldRevertLength:         FloatValue(3),
				FieldOriginalRevertLength: FloatValue(70),
				PartialAbortField(0):      FloatValue(2),
				PartialAbortField(1):      FloatValue(3),
				PartialAbortField(2):      {},
				PartialAbortField(10):     {},
			},
		},
		{
			name:  "no abort",
			block: "Serial;threads=1 commit: 28606.4",
			want: map[string]Value{
				FieldAbort:                {},
				FieldRevertLength:         FloatValue(0),
				FieldOriginalRevertLength: FloatValue(0),
			},
		},
		{
			name:  "nested keys",
			block: "Calvin;threads=4 multi commit network size: 7 network size: 3 abort cascade: 4 abort: 2",
			want: map[string]Value{
				FieldMultiCommitNetworkSize: IntValue(7),
				FieldNetworkSize:            IntValue(3),
				FieldCascadeAbort:           FloatValue(4),
				FieldAbort:                  FloatValue(2),
			},
		},
		{
			name:  "longer key only",
			block: "Calvin;multi commit network size: 7",
			want: map[string]Value{
				FieldMultiCommitNetworkSize: IntValue(7),
				FieldNetworkSize:            {},
			},
		},
		{
			name:  "key boundary",
			block: "Aria;maxthreads=5,windowSize=16",
			want: map[string]Value{
				FieldThreads:    {},
				FieldWindowSize: IntValue(16),
			},
		},
		{
			name:  "first occurrence wins",
			block: "Aria;threads=2 commit: 1, commit: 2\naverage operations: 9.5",
			want: map[string]Value{
				FieldCommit:     FloatValue(1),
				FieldOperations: FloatValue(9.5),
			},
		},
		{
			name:  "main section before side sections",
			block: "Sparkle;threads=2 commit: 900] commit: 450 abort: 3] commit: 451",
			want: map[string]Value{
				FieldCommit:      FloatValue(900),
				FieldAbort:       FloatValue(3),
				CommitAtField(0): IntValue(450),
				CommitAtField(1): IntValue(451),
				AbortAtField(0):  IntValue(3),
				AbortAtField(1):  {},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			checkFields(t, mustParse(t, test.block), test.want)
		})
	}
}

func TestParseBlockDenseBuckets(t *testing.T) {
	rec := mustParse(t, "Aria;threads=4")
	for i := 0; i < RevertBuckets; i++ {
		name := PartialAbortField(i)
		if !rec.Has(name) || !rec.Get(name).IsNull() {
			t.Errorf("bucket %q: has=%v value=%v, want null member", name, rec.Has(name), rec.Get(name))
		}
	}
	if rec.Has(CommitAtField(0)) {
		t.Errorf("record without side sections has %q", CommitAtField(0))
	}
}

func TestParseBlockFieldOrder(t *testing.T) {
	rec := mustParse(t, "Aria;threads=4] commit: 1] commit: 2")
	names := rec.Names()
	if names[0] != FieldProtocol {
		t.Errorf("first field = %q, want %q", names[0], FieldProtocol)
	}
	last := names[len(names)-4:]
	want := []string{CommitAtField(0), CommitAtField(1), AbortAtField(0), AbortAtField(1)}
	for i := range want {
		if last[i] != want[i] {
			t.Errorf("trailing fields = %q, want %q", last, want)
			break
		}
	}
}

func TestParseBlockErrors(t *testing.T) {
	for _, test := range []struct {
		block string
		field string
	}{
		{"threads=30 commit: 5", FieldProtocol},
		{" ;threads=30", FieldProtocol},
		{"Aria;threads=many", FieldThreads},
		{"Aria;threads=3.5", FieldThreads},
		{"Aria;commit: , abort: 1", FieldCommit},
		{"Aria;zipf=high", FieldZipf},
		{"Aria;threads=1] commit: lots", FieldCommit},
		{"Aria;commit: 1 abort: 1] commit: lots", CommitAtField(0)},
		{"Aria;commit: 1 abort: 1] commit: 4] abort: x", AbortAtField(1)},
	} {
		_, err := ParseBlock(test.block)
		var be *BlockError
		if !errors.As(err, &be) {
			t.Errorf("ParseBlock(%q) error = %v, want *BlockError", test.block, err)
			continue
		}
		if be.Field != test.field {
			t.Errorf("ParseBlock(%q) error field = %q, want %q", test.block, be.Field, test.field)
		}
		if be.Block != -1 {
			t.Errorf("ParseBlock(%q) error block = %d, want -1", test.block, be.Block)
		}
	}
}

func TestParseValue(t *testing.T) {
	for _, test := range []struct {
		in   string
		want Value
	}{
		{"", Value{}},
		{"30", IntValue(30)},
		{"-2", IntValue(-2)},
		{"1.1", FloatValue(1.1)},
		{"1e3", FloatValue(1000)},
		{"Spectrum", StringValue("Spectrum")},
	} {
		if got := ParseValue(test.in); got != test.want {
			t.Errorf("ParseValue(%q) = %v (%s), want %v (%s)", test.in, got, got.Kind(), test.want, test.want.Kind())
		}
	}
}
