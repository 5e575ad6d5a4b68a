// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// A Marker is the point shape of a line series.
type Marker int

const (
	// MarkerAuto takes the next shape from the session's marker pool.
	MarkerAuto Marker = iota
	// MarkerNone draws the line without point markers.
	MarkerNone
	MarkerSquare
	MarkerCircle
	MarkerTriDown
	MarkerTriUp
	MarkerTriLeft
	MarkerTriRight
)

var markerNames = [...]string{
	MarkerAuto:     "auto",
	MarkerNone:     "none",
	MarkerSquare:   "s",
	MarkerCircle:   "o",
	MarkerTriDown:  "v",
	MarkerTriUp:    "^",
	MarkerTriLeft:  "<",
	MarkerTriRight: ">",
}

func (m Marker) String() string {
	if m >= 0 && int(m) < len(markerNames) {
		return markerNames[m]
	}
	return fmt.Sprintf("Marker(%d)", int(m))
}

// markerPool is the order in which a session hands out markers.
var markerPool = []Marker{MarkerSquare, MarkerCircle, MarkerTriDown, MarkerTriUp, MarkerTriLeft, MarkerTriRight}

func (m Marker) glyph() draw.GlyphDrawer {
	switch m {
	case MarkerSquare:
		return draw.BoxGlyph{}
	case MarkerCircle:
		return draw.CircleGlyph{}
	case MarkerTriDown:
		return triangle{0, -1}
	case MarkerTriUp:
		return triangle{0, 1}
	case MarkerTriLeft:
		return triangle{-1, 0}
	case MarkerTriRight:
		return triangle{1, 0}
	}
	return nil
}

const (
	sinπover6 = vg.Length(.500000000025921)
	cosπover6 = vg.Length(.866025403769473)
)

// triangle is a filled equilateral triangle whose apex points in
// direction (dx, dy), one of the four axis directions.
type triangle struct {
	dx, dy vg.Length
}

// DrawGlyph implements the Glyph interface.
func (t triangle) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	r := sty.Radius
	// Apex, then the two base corners, in glyph coordinates where the
	// apex points along +y.
	local := [3]vg.Point{
		{X: 0, Y: r},
		{X: -r * cosπover6, Y: -r * sinπover6},
		{X: r * cosπover6, Y: -r * sinπover6},
	}
	pts := make([]vg.Point, len(local))
	for i, p := range local {
		// Rotate so that +y maps to (dx, dy).
		pts[i] = vg.Point{
			X: pt.X + p.X*t.dy + p.Y*t.dx,
			Y: pt.Y - p.X*t.dx + p.Y*t.dy,
		}
	}
	c.FillPolygon(sty.Color, pts)
}
