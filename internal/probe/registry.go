package probe

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/qiniu/x/log"

	"github.com/goplus/llconf/internal/env"
	"github.com/goplus/llconf/internal/feature"
)

// Runtime carries what a registry needs to run probes.
type Runtime struct {
	Env *env.Env
	// Exec runs external tools. OS is used when nil.
	Exec Executor
	// Out receives one "Checking for ..." line per run.
	Out io.Writer
	// Log receives trial commands and their output. It may be nil.
	Log io.Writer
	// Dir holds trial files. The system temporary directory is used when
	// empty.
	Dir string
}

// Registry maps probe names to probes and tracks their status.
//
// Run holds the registry lock from capture to commit-or-restore, so probe
// runs never interleave.
type Registry struct {
	mu     sync.Mutex
	probes map[string]Probe
	status map[string]Status
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		probes: make(map[string]Probe),
		status: make(map[string]Status),
	}
}

// Register adds p under name. It panics if name is empty or taken, since
// registration happens at startup.
func (r *Registry) Register(name string, p Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" || p == nil {
		panic("probe: Register with empty name or nil probe")
	}
	if _, dup := r.probes[name]; dup {
		panic("probe: Register called twice for " + name)
	}
	r.probes[name] = p
}

// Lookup returns the probe registered under name.
func (r *Registry) Lookup(name string) (Probe, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.probes[name]
	return p, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.probes))
	for name := range r.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns the state of the probe registered under name.
func (r *Registry) Status(name string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status[name]
}

// Run runs the probe req names. Probe failures are reported in the Result;
// the returned error is non-nil only when no probe has that name.
//
// On failure the keys the probe declares are restored and capabilities
// the probe committed in an earlier run are withdrawn.
func (r *Registry) Run(ctx context.Context, rt *Runtime, req Request) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.probes[req.Name]
	if !ok {
		err := &Error{Probe: req.Name, Op: "lookup", Err: ErrUnknownProbe}
		return Result{Name: req.Name, Message: err.Error(), Err: err}, err
	}
	r.status[req.Name] = Running

	exec := rt.Exec
	if exec == nil {
		exec = OS
	}
	pc := &Context{
		ctx:  ctx,
		name: req.Name,
		req:  req,
		env:  rt.Env,
		exec: exec,
		log:  rt.Log,
		dir:  rt.Dir,
		snap: env.Capture(rt.Env, p.Keys()...),
		what: req.Name,
	}
	if rt.Log != nil {
		fmt.Fprintf(rt.Log, "%s: running %s\n", req.Name, req)
	}

	err := p.Run(pc)
	if err == nil {
		err = feature.Commit(rt.Env, req.Name, pc.staged)
		if err != nil {
			err = &Error{Probe: req.Name, Op: "commit", Err: err}
		}
	}

	res := Result{Name: req.Name, What: pc.what}
	if err != nil {
		pc.Rollback()
		if withdrawn := feature.Withdraw(rt.Env, req.Name); len(withdrawn) > 0 {
			log.Debugf("%s: withdrew %v", req.Name, withdrawn)
		}
		r.status[req.Name] = Failed
		res.Message = err.Error()
		res.Err = err
	} else {
		r.status[req.Name] = Succeeded
		res.Succeeded = true
	}
	res.Capabilities = feature.Owned(rt.Env, req.Name)

	if rt.Out != nil {
		fmt.Fprintf(rt.Out, "Checking for %s... %s\n", res.What, yesNo(res.Succeeded))
	}
	if rt.Log != nil {
		fmt.Fprintf(rt.Log, "%s: result: %s\n", req.Name, yesNo(res.Succeeded))
	}
	return res, nil
}

func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
