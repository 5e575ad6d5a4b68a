// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package palette assigns colors, hatches and display names to the
// protocols drawn by the benchmark charts.
package palette

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette/brewer"
)

// An Entry is the style of one protocol in a Schema.
type Entry struct {
	Protocol string      // protocol name as it appears in the data
	Color    color.Color // line, marker and bar fill
	Label    string      // legend label; the protocol name if empty
}

// Name returns the legend label of e.
func (e Entry) Name() string {
	if e.Label != "" {
		return e.Label
	}
	return e.Protocol
}

// A Schema is an ordered list of protocol styles. Charts draw series
// in Schema order.
type Schema []Entry

// Lookup returns the Entry for protocol.
func (s Schema) Lookup(protocol string) (Entry, bool) {
	for _, e := range s {
		if e.Protocol == protocol {
			return e, true
		}
	}
	return Entry{}, false
}

// Protocols returns the protocol names of s in order.
func (s Schema) Protocols() []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = e.Protocol
	}
	return out
}

// Extend returns s followed by an Entry for every protocol in
// protocols that s lacks, colored from Fallback.
func (s Schema) Extend(protocols []string) Schema {
	var missing []string
	for _, p := range protocols {
		if _, ok := s.Lookup(p); !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return s
	}
	out := append(Schema(nil), s...)
	colors := Fallback(len(missing))
	for i, p := range missing {
		out = append(out, Entry{Protocol: p, Color: colors[i]})
	}
	return out
}

// mkSchema builds a Schema from (protocol, hex color, label) triples.
func mkSchema(triples ...string) Schema {
	if len(triples)%3 != 0 {
		panic("palette: schema needs (protocol, color, label) triples")
	}
	var s Schema
	for i := 0; i < len(triples); i += 3 {
		c, err := colorful.Hex(triples[i+1])
		if err != nil {
			panic(fmt.Sprintf("palette: bad color for %s: %v", triples[i], err))
		}
		s = append(s, Entry{Protocol: triples[i], Color: c, Label: triples[i+2]})
	}
	return s
}

// Schemas used by the charts.
var (
	// Lines styles line charts.
	Lines = mkSchema(
		"Spectrum", "#d62728", "",
		"Sparkle", "#8c564b", "",
		"Aria", "#ff7f0e", "",
		"AriaFB", "#2ca02c", "",
		"Calvin", "#1f77b4", "",
		"Serial", "#9467bd", "",
	)

	// Bars styles bar charts with desaturated versions of the Lines
	// colors.
	Bars = mkSchema(
		"Spectrum", "#c85a59", "",
		"Sparkle", "#8d7876", "",
		"Aria", "#db9e67", "",
		"AriaFB", "#7ab77a", "",
		"Calvin", "#7a93c1", "",
		"Serial", "#9b8bb9", "",
	)

	// PreSched compares pre-scheduled variants against the base
	// protocols.
	PreSched = mkSchema(
		"SpectrumPreSched", "#9400D3", "Spectrum-P(Sched)",
		"Spectrum", "#d62728", "Spectrum-P",
		"SpectrumNoPartial", "#595959", "Spectrum-C",
		"Sparkle", "#8c564b", "",
		"Aria", "#ff7f0e", "",
		"AriaFB", "#2ca02c", "",
		"Calvin", "#1f77b4", "",
	)

	// Compare contrasts the state snapshot strategies of Spectrum.
	Compare = mkSchema(
		"SpectrumNoPartialBASIC", "#595959", "EVM (Complete)",
		"SpectrumSTRAWMAN", "#3A5FAD", "EVMStraw (Partial)",
		"SpectrumCOPYONWRITE", "#D62728", "EVMCoW (Partial)",
	)

	// Pres is the full pre-scheduling comparison.
	Pres = mkSchema(
		"SpectrumPreSched", "#9400D3", "Spectrum-P(Sched)",
		"Spectrum", "#d62728", "Spectrum-P",
		"SpectrumNoPartialPreSched", "#1f77b4", "Spectrum-C(Sched)",
		"SpectrumNoPartial", "#595959", "Spectrum-C",
		"SparklePreSched", "#2ca02c", "Sparkle-P(Sched)",
		"Sparkle", "#8c564b", "Sparkle-C",
		"SpectrumPreSched3", "#e377c2", "Spectrum-P(Sched)*",
		"SpectrumPreSched2", "#7f7f7f", "Spectrum-P(Sched)**",
	)
)

// Display returns the canonical display name of a protocol or
// workload as written in older result files. pre selects the naming
// used in pre-scheduling charts. Unknown names are returned as is.
func Display(name string, pre bool) string {
	switch strings.ToLower(name) {
	case "sparkle original":
		return "Sparkle"
	case "sparkle partial":
		if pre {
			return "Spectrum(p)"
		}
		return "Spectrum"
	case "sparkle partial-v2":
		return "Spectrum(pp)"
	case "aria fb":
		return "AriaFB"
	case "serial":
		return "Serial"
	case "ycsb":
		return "Y"
	case "smallbank":
		return "S"
	}
	return name
}

// maxFallback is the size of the largest qualitative palette used by
// Fallback.
const maxFallback = 12

// Fallback returns n colors from a qualitative palette for protocols
// without a Schema entry. Colors repeat beyond the palette size.
func Fallback(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	size := n
	if size < 3 {
		size = 3
	}
	if size > maxFallback {
		size = maxFallback
	}
	p, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", size)
	if err != nil {
		panic(fmt.Sprintf("palette: %v", err))
	}
	colors := p.Colors()
	out := make([]color.Color, n)
	for i := range out {
		out[i] = colors[i%len(colors)]
	}
	return out
}

// Hatches are the bar fill patterns, used in order by series index.
var Hatches = []string{"xx", "//", `\\`, "||", "--", "++"}

// Hatch returns the hatch pattern of series i.
func Hatch(i int) string {
	return Hatches[i%len(Hatches)]
}
