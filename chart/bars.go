// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// hatchSpacing is the distance between hatch lines of density 1.
const hatchSpacing = vg.Length(6)

// barSet draws one bar series: a filled, optionally hatched rectangle
// per point, centered on X and spanning [Bottom, Bottom+Y].
type barSet struct {
	xs, ys, bottoms []float64
	width           float64 // in X data units
	fill            color.Color
	hatch           string
	edge            draw.LineStyle
	hatchStyle      draw.LineStyle
}

// Plot implements the plot.Plotter interface.
func (b *barSet) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, x := range b.xs {
		r := vg.Rectangle{
			Min: vg.Point{X: trX(x - b.width/2), Y: trY(b.bottoms[i])},
			Max: vg.Point{X: trX(x + b.width/2), Y: trY(b.bottoms[i] + b.ys[i])},
		}
		if r.Max.Y < r.Min.Y {
			r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
		}
		b.drawRect(&c, r)
	}
}

func (b *barSet) drawRect(c *draw.Canvas, r vg.Rectangle) {
	pts := []vg.Point{
		r.Min,
		{X: r.Min.X, Y: r.Max.Y},
		r.Max,
		{X: r.Max.X, Y: r.Min.Y},
	}
	if b.fill != nil {
		c.FillPolygon(b.fill, c.ClipPolygonXY(pts))
	}
	if segs := hatchSegments(r, b.hatch); len(segs) > 0 {
		c.StrokeLines(b.hatchStyle, c.ClipLinesXY(segs...)...)
	}
	c.StrokeLines(b.edge, c.ClipLinesXY(append(pts, pts[0]))...)
}

// DataRange implements the plot.DataRanger interface.
func (b *barSet) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = 0, 0
	for i, x := range b.xs {
		xmin = math.Min(xmin, x-b.width/2)
		xmax = math.Max(xmax, x+b.width/2)
		lo, hi := b.bottoms[i], b.bottoms[i]+b.ys[i]
		ymin = math.Min(ymin, math.Min(lo, hi))
		ymax = math.Max(ymax, math.Max(lo, hi))
	}
	return
}

// Thumbnail implements the plot.Thumbnailer interface.
func (b *barSet) Thumbnail(c *draw.Canvas) {
	b.drawRect(c, c.Rectangle)
}

// hatchSegments returns the hatch lines of pattern inside r.
//
// Each character of pattern selects a line family: '/' and '\' are
// diagonals, '|' and '-' are vertical and horizontal, 'x' is both
// diagonals and '+' is both axis lines. Repeating a character makes
// its family denser.
func hatchSegments(r vg.Rectangle, pattern string) [][]vg.Point {
	var up, down, vert, horiz int
	for _, ch := range pattern {
		switch ch {
		case '/':
			up++
		case '\\':
			down++
		case '|':
			vert++
		case '-':
			horiz++
		case 'x', 'X':
			up++
			down++
		case '+':
			vert++
			horiz++
		}
	}
	w, h := r.Max.X-r.Min.X, r.Max.Y-r.Min.Y
	if w <= 0 || h <= 0 {
		return nil
	}

	var segs [][]vg.Point
	if vert > 0 {
		sp := hatchSpacing / vg.Length(vert)
		for x := r.Min.X + sp/2; x < r.Max.X; x += sp {
			segs = append(segs, []vg.Point{{X: x, Y: r.Min.Y}, {X: x, Y: r.Max.Y}})
		}
	}
	if horiz > 0 {
		sp := hatchSpacing / vg.Length(horiz)
		for y := r.Min.Y + sp/2; y < r.Max.Y; y += sp {
			segs = append(segs, []vg.Point{{X: r.Min.X, Y: y}, {X: r.Max.X, Y: y}})
		}
	}
	diagonal := func(n int, rising bool) {
		sp := hatchSpacing / vg.Length(n) * math.Sqrt2
		// o is where the line crosses the bottom edge (rising) or top
		// edge (falling), measured from r.Min.X; it may lie left of
		// the rectangle.
		for o := -h + sp/2; o < w; o += sp {
			var start vg.Point
			var run vg.Length
			if rising {
				start = vg.Point{X: r.Min.X + o, Y: r.Min.Y}
				if o < 0 {
					start = vg.Point{X: r.Min.X, Y: r.Min.Y - o}
				}
				run = minLength(r.Max.X-start.X, r.Max.Y-start.Y)
				segs = append(segs, []vg.Point{start, {X: start.X + run, Y: start.Y + run}})
			} else {
				start = vg.Point{X: r.Min.X + o, Y: r.Max.Y}
				if o < 0 {
					start = vg.Point{X: r.Min.X, Y: r.Max.Y + o}
				}
				run = minLength(r.Max.X-start.X, start.Y-r.Min.Y)
				segs = append(segs, []vg.Point{start, {X: start.X + run, Y: start.Y - run}})
			}
		}
	}
	if up > 0 {
		diagonal(up, true)
	}
	if down > 0 {
		diagonal(down, false)
	}
	return segs
}

func minLength(a, b vg.Length) vg.Length {
	if a < b {
		return a
	}
	return b
}
