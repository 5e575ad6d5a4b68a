// Copyright 2024 The benchviz Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

// A Plan describes a set of benchmark runs: every protocol at every
// thread count and contention level, each repeated Repeat times.
//
// Protocols are text/template strings that expand to the benchmark's
// concurrency-control argument, for example
//
//	Aria:{{.Threads}}:{{.Partitions}}:{{.Batch}}:FALSE
//
// The template sees the fields of Params.
type Plan struct {
	Binary      string        `yaml:"binary"`
	Workload    string        `yaml:"workload"` // e.g. YCSB, Smallbank, TPCC
	Keys        int           `yaml:"keys"`
	Zipf        []float64     `yaml:"zipf"`
	Threads     []int         `yaml:"threads"`
	Partitions  int           `yaml:"table_partitions"`
	Batch       int           `yaml:"batch"`
	Dispatchers int           `yaml:"dispatchers"`
	Repeat      int           `yaml:"repeat"`
	Duration    time.Duration `yaml:"duration"`
	Protocols   []string      `yaml:"protocols"`

	// Commit identifies the benchmark build in the raw log.
	Commit string `yaml:"commit"`
}

// Params are the values available to protocol templates.
type Params struct {
	Threads     int
	Partitions  int
	Batch       int // Plan.Batch divided among the threads
	Dispatchers int
}

// A Config is one expanded benchmark configuration.
type Config struct {
	CC      string // concurrency-control argument
	Threads int
	Zipf    float64
}

// Defaults for Plan fields left zero.
const (
	DefaultRepeat     = 10
	DefaultDuration   = 2 * time.Second
	DefaultPartitions = 9973
	DefaultBatch      = 100
	DefaultBinary     = "../build/bin/bench"
)

// LoadPlan decodes a YAML Plan from r. Unknown keys are an error.
func LoadPlan(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	p := new(Plan)
	if err := dec.Decode(p); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty plan")
		}
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	p.setDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) setDefaults() {
	if p.Binary == "" {
		p.Binary = DefaultBinary
	}
	if p.Repeat == 0 {
		p.Repeat = DefaultRepeat
	}
	if p.Duration == 0 {
		p.Duration = DefaultDuration
	}
	if p.Partitions == 0 {
		p.Partitions = DefaultPartitions
	}
	if p.Batch == 0 {
		p.Batch = DefaultBatch
	}
	if len(p.Zipf) == 0 {
		p.Zipf = []float64{0}
	}
}

func (p *Plan) validate() error {
	switch {
	case p.Workload == "":
		return errors.New("plan: workload is required")
	case p.Keys <= 0:
		return errors.New("plan: keys must be positive")
	case len(p.Threads) == 0:
		return errors.New("plan: no thread counts")
	case len(p.Protocols) == 0:
		return errors.New("plan: no protocols")
	case p.Repeat < 0:
		return errors.New("plan: repeat must not be negative")
	case p.Duration < time.Second:
		return fmt.Errorf("plan: duration %v is under one second", p.Duration)
	}
	for _, t := range p.Threads {
		if t <= 0 {
			return fmt.Errorf("plan: thread count %d must be positive", t)
		}
	}
	_, err := p.templates()
	return err
}

func (p *Plan) templates() ([]*template.Template, error) {
	var ts []*template.Template
	for i, text := range p.Protocols {
		t, err := template.New(fmt.Sprintf("protocol %d", i)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// Configs expands p into its configurations, ordered by thread count,
// then zipf, then protocol.
func (p *Plan) Configs() ([]Config, error) {
	ts, err := p.templates()
	if err != nil {
		return nil, err
	}
	var out []Config
	var buf strings.Builder
	for _, threads := range p.Threads {
		params := Params{
			Threads:     threads,
			Partitions:  p.Partitions,
			Batch:       p.Batch / threads,
			Dispatchers: p.Dispatchers,
		}
		for _, zipf := range p.Zipf {
			for _, t := range ts {
				buf.Reset()
				if err := t.Execute(&buf, params); err != nil {
					return nil, fmt.Errorf("plan: %w", err)
				}
				out = append(out, Config{CC: buf.String(), Threads: threads, Zipf: zipf})
			}
		}
	}
	return out, nil
}

// Args returns the benchmark command-line arguments for c.
func (p *Plan) Args(c Config) []string {
	return []string{
		c.CC,
		fmt.Sprintf("%s:%d:%g", p.Workload, p.Keys, c.Zipf),
		fmt.Sprintf("%gs", p.Duration.Seconds()),
	}
}

// Protocol returns the series name of a concurrency-control argument:
// its first ':'-separated field, except that Aria with fallback
// disabled is AriaFB.
func Protocol(cc string) string {
	fields := strings.Split(cc, ":")
	if fields[0] == "Aria" && fields[len(fields)-1] == "FALSE" {
		return "AriaFB"
	}
	return fields[0]
}
