// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart renders benchmark series as line and bar charts.
//
// A Session draws one figure. It tracks the largest value drawn so
// far, which sets the Y axis ticks, and hands out point markers from
// a fixed pool. Sessions share no state, so each figure starts with a
// full marker pool and a zero maximum.
//
//	s := chart.New(chart.Options{})
//	s.Line(chart.Series{X: xs, Y: ys, Color: c, Label: "Spectrum"})
//	...
//	s.Finalize("out.pdf", chart.FinalizeOptions{XLabel: "Threads"})
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/spectrum-cc/benchviz/legend"
	"github.com/spectrum-cc/benchviz/tickstep"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

var (
	ErrEmptySeries      = errors.New("series has no data")
	ErrLengthMismatch   = errors.New("series X and Y lengths differ")
	ErrMarkersExhausted = errors.New("marker pool exhausted")
	ErrNothingDrawn     = errors.New("no series drawn")
	ErrFinalized        = errors.New("session already finalized")
)

// Options configure the look of a figure. Zero fields take the
// defaults below.
type Options struct {
	Width, Height vg.Length // 5.5in x 4in
	Title         string

	BorderWidth    vg.Length // 1.5pt; axis lines and grid
	TickLength     vg.Length // 10pt
	TickFontSize   vg.Length // 15pt
	LabelFontSize  vg.Length // 17pt
	LegendFontSize vg.Length // 13pt
	LineWidth      vg.Length // 2pt
	MarkerSize     vg.Length // 7pt; marker diameter
	DPI            int       // 300; raster output only
}

func (o *Options) setDefaults() {
	def := func(l *vg.Length, v vg.Length) {
		if *l == 0 {
			*l = v
		}
	}
	def(&o.Width, 5.5*vg.Inch)
	def(&o.Height, 4*vg.Inch)
	def(&o.BorderWidth, vg.Points(1.5))
	def(&o.TickLength, vg.Points(10))
	def(&o.TickFontSize, vg.Points(15))
	def(&o.LabelFontSize, vg.Points(17))
	def(&o.LegendFontSize, vg.Points(13))
	def(&o.LineWidth, vg.Points(2))
	def(&o.MarkerSize, vg.Points(7))
	if o.DPI == 0 {
		o.DPI = 300
	}
}

// A Series is one line of a line chart.
type Series struct {
	X, Y   []float64
	Color  color.Color
	Marker Marker // MarkerAuto takes the next marker from the pool
	Label  string
}

// A Bar is one bar series of a bar chart.
type Bar struct {
	X, Y   []float64
	Bottom []float64 // base of each bar; nil means 0
	Color  color.Color
	Hatch  string  // see hatchSegments; "" for a solid fill
	Width  float64 // in X data units; 0.3 if zero
	Label  string
}

// A Session is the render state of one figure.
type Session struct {
	opts Options
	p    *plot.Plot

	max     float64
	count   int
	pool    []Marker
	used    []Marker
	entries []entry
	done    bool
}

type entry struct {
	label  string
	thumbs []plot.Thumbnailer
}

// New returns a Session for a fresh figure.
func New(opts Options) *Session {
	opts.setDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = opts.LabelFontSize
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Width = opts.BorderWidth
		ax.Tick.LineStyle.Width = opts.BorderWidth
		ax.Tick.Length = opts.TickLength
		ax.Tick.Label.Font.Size = opts.TickFontSize
		ax.Label.TextStyle.Font.Size = opts.LabelFontSize
	}
	p.Legend.TextStyle.Font.Size = opts.LegendFontSize
	p.Legend.Top = true

	// Horizontal grid lines only, drawn below the data.
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal.Width = opts.BorderWidth / 2
	p.Add(grid)

	return &Session{
		opts: opts,
		p:    p,
		pool: append([]Marker(nil), markerPool...),
	}
}

// Max returns the largest Y value drawn so far.
func (s *Session) Max() float64 { return s.max }

// Count returns the number of series drawn so far.
func (s *Session) Count() int { return s.count }

// Markers returns the markers of the line series drawn so far, in
// draw order.
func (s *Session) Markers() []Marker { return s.used }

func checkXY(label string, xs, ys []float64) error {
	if len(ys) == 0 {
		return fmt.Errorf("series %q: %w", label, ErrEmptySeries)
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("series %q: %w (%d X, %d Y)", label, ErrLengthMismatch, len(xs), len(ys))
	}
	return nil
}

// Line draws a line series.
func (s *Session) Line(sr Series) error {
	if s.done {
		return ErrFinalized
	}
	if err := checkXY(sr.Label, sr.X, sr.Y); err != nil {
		return err
	}
	marker := sr.Marker
	if marker == MarkerAuto {
		if len(s.pool) == 0 {
			return fmt.Errorf("series %q: %w after %d series", sr.Label, ErrMarkersExhausted, len(markerPool))
		}
		marker = s.pool[0]
	}

	pts := make(plotter.XYs, len(sr.X))
	for i := range pts {
		pts[i].X, pts[i].Y = sr.X[i], sr.Y[i]
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("series %q: %w", sr.Label, err)
	}
	l.LineStyle.Color = sr.Color
	l.LineStyle.Width = s.opts.LineWidth
	thumbs := []plot.Thumbnailer{l}
	plotters := []plot.Plotter{l}

	if g := marker.glyph(); g != nil {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("series %q: %w", sr.Label, err)
		}
		sc.GlyphStyle = draw.GlyphStyle{Color: sr.Color, Radius: s.opts.MarkerSize / 2, Shape: g}
		thumbs = append(thumbs, sc)
		plotters = append(plotters, sc)
	}

	if sr.Marker == MarkerAuto {
		s.pool = s.pool[1:]
	}
	s.used = append(s.used, marker)
	s.p.Add(plotters...)
	s.record(sr.Label, thumbs, sr.Y)
	return nil
}

// Bar draws a bar series.
func (s *Session) Bar(b Bar) error {
	if s.done {
		return ErrFinalized
	}
	if err := checkXY(b.Label, b.X, b.Y); err != nil {
		return err
	}
	bottoms := b.Bottom
	if bottoms == nil {
		bottoms = make([]float64, len(b.Y))
	} else if len(bottoms) != len(b.Y) {
		return fmt.Errorf("series %q: %w (%d Y, %d bottoms)", b.Label, ErrLengthMismatch, len(b.Y), len(bottoms))
	}
	tops := make([]float64, len(b.Y))
	for i := range tops {
		tops[i] = bottoms[i] + b.Y[i]
	}
	for _, v := range append(append([]float64(nil), b.X...), tops...) {
		switch {
		case math.IsNaN(v):
			return fmt.Errorf("series %q: %w", b.Label, plotter.ErrNaN)
		case math.IsInf(v, 0):
			return fmt.Errorf("series %q: %w", b.Label, plotter.ErrInfinity)
		}
	}
	width := b.Width
	if width <= 0 {
		width = 0.3
	}
	bs := &barSet{
		xs:         b.X,
		ys:         b.Y,
		bottoms:    bottoms,
		width:      width,
		fill:       b.Color,
		hatch:      b.Hatch,
		edge:       draw.LineStyle{Color: color.Black, Width: vg.Points(1)},
		hatchStyle: draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)},
	}
	s.p.Add(bs)
	s.record(b.Label, []plot.Thumbnailer{bs}, tops)
	return nil
}

func (s *Session) record(label string, thumbs []plot.Thumbnailer, ys []float64) {
	s.count++
	if _, hi := stats.Bounds(ys); hi > s.max {
		s.max = hi
	}
	if label != "" {
		s.entries = append(s.entries, entry{label, thumbs})
	}
}

// FinalizeOptions control the axes and legend of a finished figure.
type FinalizeOptions struct {
	XLabel, YLabel string

	// XTicks places X ticks at fixed positions. XTickLabels, if
	// non-nil, labels them; otherwise the positions are printed.
	// With no XTicks the X axis uses default ticks.
	XTicks      []float64
	XTickLabels []string

	// YTicks is the target Y tick count; 0 means tickstep.DefaultTarget.
	YTicks    int
	Suffix    tickstep.Suffix
	Overrides tickstep.Overrides

	// Legend orders the legend; nil means legend.Default.
	Legend *legend.Orderer
}

// Finalize sets up the axes and legend and writes the figure to path.
// The format follows the extension of path: .pdf, .svg or .png.
// It returns the Y tick layout used.
//
// A Session cannot be drawn on after Finalize, even if it fails.
func (s *Session) Finalize(path string, fo FinalizeOptions) (tickstep.Spec, error) {
	if s.done {
		return tickstep.Spec{}, ErrFinalized
	}
	s.done = true
	if s.count == 0 {
		return tickstep.Spec{}, ErrNothingDrawn
	}

	spec := tickstep.Compute(s.max, fo.YTicks, fo.Suffix, fo.Overrides)
	var yticks []plot.Tick
	for _, y := range spec.Ticks() {
		yticks = append(yticks, plot.Tick{Value: float64(y), Label: spec.Label(y)})
	}
	s.p.Y.Tick.Marker = plot.ConstantTicks(yticks)
	s.p.Y.Min = 0
	s.p.Y.Max = math.Max(s.max, float64(spec.Max)) * 1.05
	if s.p.Y.Max == 0 {
		s.p.Y.Max = 1
	}

	if len(fo.XTicks) > 0 {
		if fo.XTickLabels != nil && len(fo.XTickLabels) != len(fo.XTicks) {
			return spec, fmt.Errorf("%d X tick labels for %d ticks", len(fo.XTickLabels), len(fo.XTicks))
		}
		xticks := make([]plot.Tick, len(fo.XTicks))
		for i, x := range fo.XTicks {
			xticks[i].Value = x
			if fo.XTickLabels != nil {
				xticks[i].Label = fo.XTickLabels[i]
			} else {
				xticks[i].Label = strconv.FormatFloat(x, 'g', -1, 64)
			}
		}
		s.p.X.Tick.Marker = plot.ConstantTicks(xticks)
	}
	s.p.X.Label.Text = fo.XLabel
	s.p.Y.Label.Text = fo.YLabel

	orderer := fo.Legend
	if orderer == nil {
		orderer = legend.Default
	}
	labels := make([]string, len(s.entries))
	for i, e := range s.entries {
		labels[i] = e.label
	}
	perm, err := orderer.Order(labels)
	if err != nil {
		return spec, err
	}
	for _, i := range perm {
		s.p.Legend.Add(s.entries[i].label, s.entries[i].thumbs...)
	}

	return spec, s.save(path)
}

func (s *Session) save(path string) error {
	w, h := s.opts.Width, s.opts.Height
	var can vg.CanvasWriterTo
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		can = vgpdf.New(w, h)
	case ".svg":
		can = vgsvg.New(w, h)
	case ".png":
		can = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h),
			vgimg.UseDPI(s.opts.DPI), vgimg.UseBackgroundColor(color.White))}
	default:
		return fmt.Errorf("%s: unsupported chart format %q", path, ext)
	}
	s.p.Draw(draw.New(can))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := can.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
