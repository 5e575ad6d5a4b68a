// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

import (
	"fmt"
	"strconv"
)

// A Kind is the type of a Value.
type Kind uint8

const (
	Null Kind = iota
	Int
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// A Value is a single optional field of a Record.
//
// The zero Value is null. A null Value means the field was not
// observed; it is never the same as a zero number.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// IntValue returns a Value holding the integer v.
func IntValue(v int64) Value { return Value{kind: Int, i: v} }

// FloatValue returns a Value holding the float v.
func FloatValue(v float64) Value { return Value{kind: Float, f: v} }

// StringValue returns a Value holding the string v.
func StringValue(v string) Value { return Value{kind: String, s: v} }

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null Value.
func (v Value) IsNull() bool { return v.kind == Null }

// Float returns v as a float64. ok is false if v is null or a string.
func (v Value) Float() (f float64, ok bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	}
	return 0, false
}

// Int returns v as an int64. Float values are truncated.
// ok is false if v is null or a string.
func (v Value) Int() (i int64, ok bool) {
	switch v.kind {
	case Int:
		return v.i, true
	case Float:
		return int64(v.f), true
	}
	return 0, false
}

// Str returns the string held by v, or "" if v is not a string.
func (v Value) Str() string {
	if v.kind == String {
		return v.s
	}
	return ""
}

// String formats v. Null formats as the empty string so that a
// formatted Value can be written directly into a CSV cell.
func (v Value) String() string {
	switch v.kind {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return v.s
	}
	return ""
}

// ParseValue parses a cell of tabular input. The empty string is
// null; otherwise the cell is an Int if it parses as one, a Float if
// it parses as one, and a String otherwise.
func ParseValue(s string) Value {
	if s == "" {
		return Value{}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(s)
}
