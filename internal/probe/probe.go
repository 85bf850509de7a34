// Package probe runs checks for optional native dependencies against a
// shared build environment.
//
// A probe changes the environment speculatively and proves the capability
// with a trial compile, link or tool run. When it fails, every key it
// declared is restored to its value before the run. When it succeeds, the
// capabilities it staged are committed through package feature.
package probe

import "slices"

// Probe is one check for an optional capability.
type Probe interface {
	// Keys lists the environment keys the probe may change.
	Keys() []string
	// Run performs the check. A nil error means the capability is present.
	Run(ctx *Context) error
}

type funcProbe struct {
	keys []string
	run  func(ctx *Context) error
}

func (p funcProbe) Keys() []string         { return slices.Clone(p.keys) }
func (p funcProbe) Run(ctx *Context) error { return p.run(ctx) }

// Func returns a Probe that declares keys and runs fn.
func Func(keys []string, fn func(ctx *Context) error) Probe {
	return funcProbe{keys: slices.Clone(keys), run: fn}
}

// Status is the state of a probe within a session.
type Status int

const (
	NotRun Status = iota
	Running
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case NotRun:
		return "not run"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of one probe run.
type Result struct {
	Name string
	// What is the human-readable name of the capability checked.
	What      string
	Succeeded bool
	// Message explains a failure.
	Message string
	// Capabilities lists the capabilities owned by the probe after the
	// run, sorted.
	Capabilities []string
	Err          error
}
