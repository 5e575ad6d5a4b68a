// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names produced by ParseBlock.
const (
	FieldProtocol               = "protocol"
	FieldCrossRatio             = "cross_ratio"
	FieldThreads                = "threads"
	FieldZipf                   = "zipf"
	FieldNetworkSize            = "network size"
	FieldMultiCommitNetworkSize = "multi commit network size"
	FieldWindowSize             = "window size"
	FieldCommit                 = "commit"
	FieldAbort                  = "abort"
	FieldCascadeAbort           = "cascade abort"
	FieldOperations             = "operations"
	FieldRevertLength           = "revert length"
	FieldOriginalRevertLength   = "original revert length"
)

// Block structure of the benchmark log format.
const (
	blockMarker   = '@'
	sectionMarker = "] "
	revertMarker  = "partial revert"
)

// RevertBuckets is the number of partial-revert histogram buckets.
// Buckets are indexed 0 through RevertBuckets-1.
const RevertBuckets = 11

// revertFactor estimates the revert length from the abort rate when a
// block has no partial-revert histogram.
const revertFactor = 10

// PartialAbortField returns the name of histogram bucket i.
func PartialAbortField(i int) string { return fmt.Sprintf("partial abort %d", i) }

// CommitAtField returns the name of the commit count of side-record i.
func CommitAtField(i int) string { return fmt.Sprintf("commit at sec %d", i) }

// AbortAtField returns the name of the abort count of side-record i.
func AbortAtField(i int) string { return fmt.Sprintf("abort at sec %d", i) }

// number is a field kind accepting either an Int or a Float token.
const number Kind = 255

type field struct {
	name   string
	prefix string
	kind   Kind
}

var (
	scalarFields = mkScalarFields()
	sidePrefixes = []string{"commit: ", "abort: "}
)

func mkScalarFields() []field {
	fields := []field{
		{FieldCrossRatio, "cross_ratio=", Int},
		{FieldThreads, "threads=", Int},
		{FieldZipf, "zipf=", Float},
		{FieldNetworkSize, "network size: ", Int},
		{FieldMultiCommitNetworkSize, "multi commit network size: ", Int},
		{FieldWindowSize, "windowSize=", Int},
		{FieldCommit, "commit: ", Float},
		{FieldAbort, "abort: ", Float},
		{FieldCascadeAbort, "abort cascade: ", Float},
		{FieldOperations, "average operations: ", Float},
	}
	for i := 0; i < RevertBuckets; i++ {
		fields = append(fields, field{PartialAbortField(i), fmt.Sprintf("partial revert %d: ", i), Float})
	}
	return fields
}

// ParseBlock parses the text of one benchmark run (without its
// leading '@') into a Record.
//
// The protocol is required. Every other field is null if its key does
// not appear in the block. A key whose value cannot be parsed is an
// error; it is never replaced by a default.
//
// If ParseBlock fails, the error is a *BlockError whose Block is -1.
func ParseBlock(block string) (*Record, error) {
	block = strings.TrimSpace(block)
	sections := strings.Split(block, sectionMarker)
	sections[0] = strings.TrimSpace(sections[0])

	rec := NewRecord()

	proto, _, ok := strings.Cut(block, ";")
	proto = strings.TrimSpace(proto)
	if !ok || proto == "" {
		return nil, &BlockError{Block: -1, Field: FieldProtocol, Msg: "missing protocol before ';'"}
	}
	rec.Set(FieldProtocol, StringValue(proto))

	// Index every section once. Scalar fields come from the main
	// section if present there, otherwise from the first side
	// section that has them.
	prefixes := make([]string, len(scalarFields))
	for i, f := range scalarFields {
		prefixes[i] = f.prefix
	}
	indexes := make([]map[string]int, len(sections))
	for i, s := range sections {
		indexes[i] = scanKeys(s, prefixes)
	}
	values := make(map[string]Value, len(scalarFields))
	for _, f := range scalarFields {
		for i, s := range sections {
			off, ok := indexes[i][f.prefix]
			if !ok {
				continue
			}
			v, err := convert(token(s[off:]), f)
			if err != nil {
				return nil, err
			}
			values[f.name] = v
			break
		}
	}

	for _, f := range scalarFields[:len(scalarFields)-RevertBuckets] {
		rec.Set(f.name, values[f.name])
	}

	abort, _ := values[FieldAbort].Float()
	original := revertFactor * abort
	revert := original
	if strings.Contains(block, revertMarker) {
		revert = 0
		for i := 0; i < RevertBuckets; i++ {
			if v, ok := values[PartialAbortField(i)].Float(); ok {
				revert += float64(i) * v
			}
		}
	}
	rec.Set(FieldRevertLength, FloatValue(revert))
	rec.Set(FieldOriginalRevertLength, FloatValue(original))

	for i := 0; i < RevertBuckets; i++ {
		name := PartialAbortField(i)
		rec.Set(name, values[name])
	}

	sides := sections[1:]
	commits := make([]Value, len(sides))
	aborts := make([]Value, len(sides))
	for i, s := range sides {
		idx := scanKeys(s, sidePrefixes)
		var err error
		if off, ok := idx[sidePrefixes[0]]; ok {
			if commits[i], err = convert(token(s[off:]), field{CommitAtField(i), sidePrefixes[0], number}); err != nil {
				return nil, err
			}
		}
		if off, ok := idx[sidePrefixes[1]]; ok {
			if aborts[i], err = convert(token(s[off:]), field{AbortAtField(i), sidePrefixes[1], number}); err != nil {
				return nil, err
			}
		}
	}
	for i, v := range commits {
		rec.Set(CommitAtField(i), v)
	}
	for i, v := range aborts {
		rec.Set(AbortAtField(i), v)
	}
	return rec, nil
}

type keyMatch struct {
	start, end int
	prefix     string
}

// scanKeys finds the first occurrence of each prefix in s and returns
// the offset just past it.
//
// A prefix matches only at the start of s or after a byte that is not
// a letter, digit or underscore. When one match lies within the span
// of a longer match (such as "network size: " within
// "multi commit network size: "), the longer key owns that text.
func scanKeys(s string, prefixes []string) map[string]int {
	var matches []keyMatch
	for _, p := range prefixes {
		for off := 0; off < len(s); {
			i := strings.Index(s[off:], p)
			if i < 0 {
				break
			}
			start := off + i
			if start == 0 || !isWordByte(s[start-1]) {
				matches = append(matches, keyMatch{start, start + len(p), p})
			}
			off = start + 1
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		li, lj := matches[i].end-matches[i].start, matches[j].end-matches[j].start
		if li != lj {
			return li > lj
		}
		return matches[i].start < matches[j].start
	})

	var claimed []keyMatch
	found := make(map[string]int)
	for _, m := range matches {
		inside := false
		for _, c := range claimed {
			if m.start >= c.start && m.end <= c.end {
				inside = true
				break
			}
		}
		if inside {
			continue
		}
		claimed = append(claimed, m)
		if prev, ok := found[m.prefix]; !ok || m.end < prev {
			found[m.prefix] = m.end
		}
	}
	return found
}

func isWordByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// token returns the value text at the start of s: leading blanks are
// skipped and the value runs to the next blank, comma or newline.
func token(s string) string {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t\r\n,"); i >= 0 {
		s = s[:i]
	}
	return s
}

func convert(tok string, f field) (Value, error) {
	bad := func(err error) (Value, error) {
		msg := fmt.Sprintf("value %q after %q is not %s", tok, f.prefix, kindName(f.kind))
		if tok == "" {
			msg = fmt.Sprintf("no value after %q", f.prefix)
		}
		return Value{}, &BlockError{Block: -1, Field: f.name, Msg: msg, Err: err}
	}
	switch f.kind {
	case Int:
		i, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return bad(err)
		}
		return IntValue(i), nil
	case Float:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return bad(err)
		}
		return FloatValue(v), nil
	case number:
		if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return IntValue(i), nil
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return bad(err)
		}
		return FloatValue(v), nil
	}
	return StringValue(tok), nil
}

func kindName(k Kind) string {
	switch k {
	case Int:
		return "an integer"
	case Float:
		return "a float"
	case number:
		return "a number"
	}
	return k.String()
}
