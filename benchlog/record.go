// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchlog

// A Record is the set of named fields parsed from one benchmark run.
//
// Fields are kept in the order they were set. A field that was set to
// the null Value is still a member of the Record; Get on a field that
// was never set also returns null.
type Record struct {
	names  []string
	fields map[string]Value
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]Value)}
}

// Set sets field name to v, appending name to the field order if it
// is new.
func (r *Record) Set(name string, v Value) {
	if r.fields == nil {
		r.fields = make(map[string]Value)
	}
	if _, ok := r.fields[name]; !ok {
		r.names = append(r.names, name)
	}
	r.fields[name] = v
}

// Get returns the value of field name, or null if r has no such field.
func (r *Record) Get(name string) Value {
	return r.fields[name]
}

// Has reports whether name is a field of r, even a null one.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Names returns the field names of r in the order they were set.
// The caller must not modify the returned slice.
func (r *Record) Names() []string {
	return r.names
}

// Protocol returns the grouping key of r.
func (r *Record) Protocol() string {
	return r.Get(FieldProtocol).Str()
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := &Record{
		names:  append([]string(nil), r.names...),
		fields: make(map[string]Value, len(r.fields)),
	}
	for k, v := range r.fields {
		c.fields[k] = v
	}
	return c
}
