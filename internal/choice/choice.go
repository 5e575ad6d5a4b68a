// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package choice implements command-line flags restricted to a fixed
// set of values.
package choice

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// An InvalidError reports a flag value outside its allowed set.
type InvalidError struct {
	Option  string
	Value   string
	Allowed []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid value %q for -%s (want one of %s)", e.Value, e.Option, strings.Join(e.Allowed, ", "))
}

// A Value is a pflag.Value restricted to a set of allowed strings.
//
// Set records any string; Validate reports a value outside the set.
// Commands call Validate right after parsing flags so that the caller
// receives an *InvalidError rather than pflag's flattened message.
type Value struct {
	name    string
	allowed []string
	val     string
	set     bool
}

var _ pflag.Value = (*Value)(nil)

// New returns a Value for the option name, initially def. def may be
// "" for an option without a default.
func New(name, def string, allowed ...string) *Value {
	return &Value{name: name, allowed: allowed, val: def}
}

// Var defines an enumerated flag on fs and returns its Value.
func Var(fs *pflag.FlagSet, name, shorthand, def, usage string, allowed ...string) *Value {
	v := New(name, def, allowed...)
	fs.VarP(v, name, shorthand, fmt.Sprintf("%s (%s)", usage, strings.Join(allowed, ", ")))
	return v
}

func (v *Value) String() string { return v.val }

// Set implements pflag.Value.
func (v *Value) Set(s string) error {
	v.val, v.set = s, true
	return nil
}

// Type implements pflag.Value.
func (v *Value) Type() string { return "string" }

// Get returns the current value.
func (v *Value) Get() string { return v.val }

// IsSet reports whether the flag was given on the command line.
func (v *Value) IsSet() bool { return v.set }

// Validate returns an *InvalidError unless v holds one of its allowed
// values. An unset option without a default is invalid.
func (v *Value) Validate() error {
	return Check(v.name, v.val, v.allowed...)
}

// Validate validates each of vs in order and returns the first error.
func Validate(vs ...*Value) error {
	for _, v := range vs {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Check returns an *InvalidError unless value is one of allowed.
func Check(option, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &InvalidError{Option: option, Value: value, Allowed: allowed}
}
