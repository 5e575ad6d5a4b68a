// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tickstep chooses readable axis tick steps.
//
// Given the largest value on an axis, Compute picks an integer step
// that yields at most a target number of ticks, rounded down to a
// coarse leading digit, and optionally aligned to a unit suffix such
// as K (thousands) or M (millions).
package tickstep

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultTarget is the tick count used when Compute is given a
// non-positive target.
const DefaultTarget = 4

// A Suffix is a unit suffix for tick labels.
type Suffix struct {
	Label  string // "K", "W", "M", or "" for none
	Factor int64  // Unscaled value of 1 Label (e.g., 1 K => 1000)
}

var (
	None        = Suffix{"", 1}
	Thousand    = Suffix{"K", 1000}
	TenThousand = Suffix{"W", 10000}
	Million     = Suffix{"M", 1000000}
)

var suffixes = []Suffix{None, Thousand, TenThousand, Million}

// ParseSuffix returns the Suffix named s. Matching is case-insensitive
// and the empty string is None.
func ParseSuffix(s string) (Suffix, error) {
	for _, suf := range suffixes {
		if strings.EqualFold(s, suf.Label) {
			return suf, nil
		}
	}
	return None, fmt.Errorf("unknown tick suffix %q (want K, W or M)", s)
}

func (s Suffix) String() string { return s.Label }

// Overrides force parts of the computation. Zero fields are computed.
type Overrides struct {
	Step int64 // explicit step, still aligned to the suffix
	Max  int64 // explicit axis maximum
}

// A Spec is the result of Compute: ticks at 0, Step, 2*Step, ... below
// Max, labeled with Suffix.
type Spec struct {
	Step   int64
	Suffix Suffix
	Max    int64
}

// Compute returns the tick Spec for an axis whose largest value is
// maxValue, aiming for target ticks.
//
// The raw step max/target is rounded down to a multiple of half its
// leading power of ten, so the axis never gets more ticks than
// target. If suffix has a factor f and the step exceeds 5f, the step
// is further rounded down to a multiple of 5f. The step is at least 1.
func Compute(maxValue float64, target int, suffix Suffix, o Overrides) Spec {
	if target <= 0 {
		target = DefaultTarget
	}
	if suffix.Factor <= 0 {
		suffix = None
	}
	max := int64(0)
	if maxValue > 0 && !math.IsInf(maxValue, 1) {
		max = int64(math.Floor(maxValue))
	}
	if o.Max > 0 {
		max = o.Max
	}

	step := o.Step
	if step <= 0 {
		step = max / int64(target)
		if g := granularity(step); g > 1 {
			step = step / g * g
		}
	}
	if f := 5 * suffix.Factor; suffix.Factor > 1 && step > f {
		step = step / f * f
	}
	if step < 1 {
		step = 1
	}
	return Spec{Step: step, Suffix: suffix, Max: max}
}

// granularity returns half the leading power of ten of step, at
// least 1. For example, granularity(23456) is 5000.
func granularity(step int64) int64 {
	if step <= 0 {
		return 1
	}
	digits := len(strconv.FormatInt(step, 10))
	g := int64(1)
	for i := 1; i < digits; i++ {
		g *= 10
	}
	g /= 2
	if g < 1 {
		g = 1
	}
	return g
}

// Ticks returns the tick values of s: 0, Step, 2*Step, ... up to but
// excluding Max. An empty axis still has a tick at 0.
func (s Spec) Ticks() []int64 {
	ticks := []int64{0}
	for x := s.Step; x < s.Max; x += s.Step {
		ticks = append(ticks, x)
	}
	return ticks
}

// Label formats tick value x. Values of at least one suffix unit are
// printed in whole units with the suffix appended.
func (s Spec) Label(x int64) string {
	if s.Suffix.Factor > 1 && x >= s.Suffix.Factor {
		return strconv.FormatInt(x/s.Suffix.Factor, 10) + s.Suffix.Label
	}
	return strconv.FormatInt(x, 10)
}

// Format formats an arbitrary axis value the same way as Label,
// rounding down to an integer.
func (s Spec) Format(v float64) string {
	return s.Label(int64(math.Floor(v)))
}
