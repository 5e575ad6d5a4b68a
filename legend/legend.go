// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package legend puts chart legend entries into a canonical order.
//
// An Orderer holds a list of Rules. Each Rule names a signature label
// and the order to use when that label is among the entries being
// drawn. Rules are checked in sequence and the first match wins;
// adding a new ordering means adding a Rule, not code.
package legend

import (
	"fmt"
	"strings"
)

// A Rule maps a signature label to a canonical legend order.
type Rule struct {
	Signature string
	Order     []string
}

// An Orderer reorders legend labels according to its Rules.
type Orderer struct {
	Rules []Rule
}

// DefaultRules are the canonical orders used by the benchmark charts.
var DefaultRules = []Rule{
	{"Spectrum(pp)", []string{"Spectrum(pp)", "Sparkle", "Spectrum(p)", "AriaFB"}},
	{"Serial", []string{"Spectrum", "AriaFB", "Sparkle", "Serial"}},
	{"Spectrum-P(Sched)", []string{"Spectrum-P(Sched)", "Sparkle", "Spectrum-P", "AriaFB", "Spectrum-C", "Calvin"}},
}

// Default is an Orderer using DefaultRules.
var Default = &Orderer{Rules: DefaultRules}

// An UnknownLabelError reports a canonical order that names a label
// absent from the labels being ordered.
type UnknownLabelError struct {
	Label     string
	Signature string // signature of the matching Rule
	Present   []string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("legend order for %q needs label %q, which is not among [%s]", e.Signature, e.Label, strings.Join(e.Present, ", "))
}

// Order returns the permutation of labels to draw: out[i] is the index
// in labels of the i'th legend entry.
//
// If no Rule's signature is in labels, Order returns the identity.
// Otherwise every label of the matching Rule's order must be present;
// labels the order does not mention follow in their input order.
func (o *Orderer) Order(labels []string) ([]int, error) {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, ok := index[l]; !ok {
			index[l] = i
		}
	}

	var rule *Rule
	for i := range o.Rules {
		if _, ok := index[o.Rules[i].Signature]; ok {
			rule = &o.Rules[i]
			break
		}
	}

	out := make([]int, 0, len(labels))
	if rule == nil {
		for i := range labels {
			out = append(out, i)
		}
		return out, nil
	}

	used := make([]bool, len(labels))
	for _, l := range rule.Order {
		i, ok := index[l]
		if !ok {
			return nil, &UnknownLabelError{Label: l, Signature: rule.Signature, Present: labels}
		}
		if !used[i] {
			used[i] = true
			out = append(out, i)
		}
	}
	for i := range labels {
		if !used[i] {
			out = append(out, i)
		}
	}
	return out, nil
}

// Apply reorders parallel slices of legend handles and labels using o.
func Apply[H any](o *Orderer, handles []H, labels []string) ([]H, []string, error) {
	if len(handles) != len(labels) {
		return nil, nil, fmt.Errorf("%d legend handles for %d labels", len(handles), len(labels))
	}
	perm, err := o.Order(labels)
	if err != nil {
		return nil, nil, err
	}
	hs := make([]H, len(perm))
	ls := make([]string, len(perm))
	for i, j := range perm {
		hs[i], ls[i] = handles[j], labels[j]
	}
	return hs, ls, nil
}
