// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package choice

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestVar(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	w := Var(fs, "workload", "w", "", "workload", "smallbank", "ycsb", "tpcc")
	m := Var(fs, "metric", "m", "tps", "metric", "tps", "abort")

	if err := fs.Parse([]string{"-w", "ycsb"}); err != nil {
		t.Fatal(err)
	}
	if w.Get() != "ycsb" || !w.IsSet() {
		t.Errorf("workload = %q (set %v), want ycsb", w.Get(), w.IsSet())
	}
	if m.Get() != "tps" || m.IsSet() {
		t.Errorf("metric = %q (set %v), want default tps", m.Get(), m.IsSet())
	}
	if err := Validate(w, m); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestVarInvalid(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	w := Var(fs, "workload", "w", "", "workload", "smallbank", "ycsb", "tpcc")

	if err := fs.Parse([]string{"--workload=tatp"}); err != nil {
		t.Fatal(err)
	}
	err := Validate(w)
	var ie *InvalidError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *InvalidError", err)
	}
	if ie.Option != "workload" || ie.Value != "tatp" || len(ie.Allowed) != 3 {
		t.Errorf("error = %+v", ie)
	}
	if !strings.Contains(ie.Error(), "smallbank, ycsb, tpcc") {
		t.Errorf("Error() = %q does not list allowed values", ie.Error())
	}
}

func TestValidateUnset(t *testing.T) {
	v := New("contention", "", "uniform", "skewed")
	var ie *InvalidError
	if err := v.Validate(); !errors.As(err, &ie) || ie.Option != "contention" || ie.Value != "" {
		t.Errorf("Validate() = %v, want *InvalidError for unset contention", err)
	}
}
