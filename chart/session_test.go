// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spectrum-cc/benchviz/legend"
	"github.com/spectrum-cc/benchviz/tickstep"
	"gonum.org/v1/plot/vg"
)

var red = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}

func line(label string, ys ...float64) Series {
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	return Series{X: xs, Y: ys, Color: red, Label: label}
}

func TestLineErrors(t *testing.T) {
	s := New(Options{})
	if err := s.Line(Series{Label: "empty"}); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("empty series error = %v, want ErrEmptySeries", err)
	}
	if err := s.Line(Series{X: []float64{1}, Y: []float64{1, 2}, Label: "short"}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mismatched series error = %v, want ErrLengthMismatch", err)
	}
	if err := s.Bar(Bar{X: []float64{1}, Y: []float64{1}, Bottom: []float64{1, 2}}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mismatched bottom error = %v, want ErrLengthMismatch", err)
	}
	if s.Count() != 0 || s.Max() != 0 {
		t.Errorf("failed draws changed the session: count %d, max %v", s.Count(), s.Max())
	}
	if len(s.Markers()) != 0 {
		t.Errorf("failed draws consumed markers %v", s.Markers())
	}
}

func TestMarkerPool(t *testing.T) {
	s := New(Options{})
	for i := 0; i < len(markerPool); i++ {
		if err := s.Line(line("l", 1, 2)); err != nil {
			t.Fatal(err)
		}
	}
	var got []string
	for _, m := range s.Markers() {
		got = append(got, m.String())
	}
	if diff := cmp.Diff([]string{"s", "o", "v", "^", "<", ">"}, got); diff != "" {
		t.Errorf("markers (-want +got):\n%s", diff)
	}
	if err := s.Line(line("one too many", 1)); !errors.Is(err, ErrMarkersExhausted) {
		t.Errorf("7th line error = %v, want ErrMarkersExhausted", err)
	}
	// An explicit marker does not need the pool.
	explicit := line("explicit", 1)
	explicit.Marker = MarkerNone
	if err := s.Line(explicit); err != nil {
		t.Errorf("line with explicit marker: %v", err)
	}

	// A new session starts with a full pool.
	s2 := New(Options{})
	if err := s2.Line(line("fresh", 1)); err != nil {
		t.Fatal(err)
	}
	if s2.Markers()[0] != MarkerSquare || s2.Max() != 1 {
		t.Errorf("fresh session: markers %v, max %v", s2.Markers(), s2.Max())
	}
}

func TestRunningMax(t *testing.T) {
	s := New(Options{})
	if err := s.Line(line("a", 3, 9, 4)); err != nil {
		t.Fatal(err)
	}
	if err := s.Line(line("b", 5)); err != nil {
		t.Fatal(err)
	}
	if s.Max() != 9 {
		t.Errorf("max after lines = %v, want 9", s.Max())
	}
	err := s.Bar(Bar{X: []float64{0, 1}, Y: []float64{4, 2}, Bottom: []float64{7, 1}, Label: "stacked"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Max() != 11 {
		t.Errorf("max after stacked bar = %v, want 11", s.Max())
	}
	if s.Count() != 3 {
		t.Errorf("count = %d, want 3", s.Count())
	}
}

func TestFinalize(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".svg", ".png", ".pdf"} {
		s := New(Options{Width: 4 * vg.Inch, Height: 3 * vg.Inch, DPI: 72})
		for _, label := range []string{"Serial", "Sparkle", "AriaFB", "Spectrum"} {
			if err := s.Line(line(label, 100000, 250000, 1000000)); err != nil {
				t.Fatal(err)
			}
		}
		path := filepath.Join(dir, "threads"+ext)
		spec, err := s.Finalize(path, FinalizeOptions{
			XLabel: "Threads",
			YLabel: "Throughput(Txn/s)",
			XTicks: []float64{1, 2, 3},
			Suffix: tickstep.Thousand,
		})
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		if spec.Step != 250000 || spec.Suffix != tickstep.Thousand {
			t.Errorf("%s: tick spec = %+v, want step 250000 K", ext, spec)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Errorf("%s: empty output", ext)
		}
		if err := s.Line(line("late", 1)); !errors.Is(err, ErrFinalized) {
			t.Errorf("%s: draw after Finalize error = %v, want ErrFinalized", ext, err)
		}
	}
}

func TestFinalizeBars(t *testing.T) {
	s := New(Options{})
	for i, hatch := range []string{"xx", "//", `\\`, "||", "--", "++"} {
		off := (float64(i) - 2.5) * 0.14
		err := s.Bar(Bar{
			X:     []float64{off, 1 + off, 2 + off},
			Y:     []float64{3, 5, 7},
			Color: red,
			Hatch: hatch,
			Width: 0.14,
			Label: strings.Repeat("P", i+1),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "skew.svg")
	spec, err := s.Finalize(path, FinalizeOptions{
		XTicks:      []float64{0, 1, 2},
		XTickLabels: []string{"0.1", "0.5", "0.9"},
		Overrides:   tickstep.Overrides{Step: 7, Max: 29},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{0, 7, 14, 21, 28}, spec.Ticks()); diff != "" {
		t.Errorf("ticks (-want +got):\n%s", diff)
	}
}

func TestFinalizeErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := New(Options{}).Finalize(filepath.Join(dir, "none.svg"), FinalizeOptions{}); !errors.Is(err, ErrNothingDrawn) {
		t.Errorf("empty figure error = %v, want ErrNothingDrawn", err)
	}

	// Serial selects a canonical order that needs AriaFB.
	s := New(Options{})
	for _, label := range []string{"Serial", "Spectrum", "Sparkle"} {
		if err := s.Line(line(label, 1)); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, "missing.svg")
	_, err := s.Finalize(path, FinalizeOptions{})
	var ue *legend.UnknownLabelError
	if !errors.As(err, &ue) || ue.Label != "AriaFB" {
		t.Errorf("Finalize error = %v, want unknown label AriaFB", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed figure was written: %v", err)
	}

	s = New(Options{})
	if err := s.Line(line("x", 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Finalize(filepath.Join(dir, "out.gif"), FinalizeOptions{}); err == nil {
		t.Errorf("Finalize to .gif succeeded")
	}
}

func TestHatchSegments(t *testing.T) {
	r := vg.Rectangle{Max: vg.Point{X: 12, Y: 30}}
	if got := len(hatchSegments(r, "|")); got != 2 {
		t.Errorf("| produced %d segments, want 2", got)
	}
	if got := len(hatchSegments(r, "||")); got != 4 {
		t.Errorf("|| produced %d segments, want 4", got)
	}
	if got := len(hatchSegments(r, "-")); got != 5 {
		t.Errorf("- produced %d segments, want 5", got)
	}
	if got := hatchSegments(r, ""); got != nil {
		t.Errorf("empty pattern produced %v", got)
	}
	for _, pat := range []string{"/", `\`, "x"} {
		segs := hatchSegments(r, pat)
		if len(segs) == 0 {
			t.Errorf("%q produced no segments", pat)
		}
		for _, seg := range segs {
			for _, p := range seg {
				if p.X < r.Min.X-1e-9 || p.X > r.Max.X+1e-9 || p.Y < r.Min.Y-1e-9 || p.Y > r.Max.Y+1e-9 {
					t.Errorf("%q: point %v outside %v", pat, p, r)
				}
			}
		}
	}
}

func TestTriangleGlyphs(t *testing.T) {
	for _, m := range markerPool {
		if m.glyph() == nil {
			t.Errorf("marker %v has no glyph", m)
		}
	}
	if MarkerNone.glyph() != nil {
		t.Errorf("MarkerNone has a glyph")
	}
}
