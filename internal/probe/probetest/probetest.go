// Package probetest provides an Executor for testing probes without a
// host toolchain.
package probetest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/goplus/llconf/internal/probe"
)

// Executor is a probe.Executor that knows a fixed set of tools and answers
// commands with Handle.
type Executor struct {
	// Tools maps executable names to the paths LookPath returns. Commands
	// whose path is neither a key nor a value fail with
	// probe.ErrToolNotFound.
	Tools map[string]string
	// Handle answers a command. A nil Handle makes every command succeed
	// with no output.
	Handle func(cmd probe.Command) ([]byte, error)

	mu    sync.Mutex
	calls []probe.Command
}

// New returns an Executor knowing tools, each found under /usr/bin.
func New(tools ...string) *Executor {
	x := &Executor{Tools: make(map[string]string)}
	for _, t := range tools {
		x.Tools[t] = "/usr/bin/" + t
	}
	return x
}

func (x *Executor) LookPath(file string, dirs []string) (string, error) {
	if path, ok := x.Tools[file]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", probe.ErrToolNotFound, file)
}

func (x *Executor) Run(ctx context.Context, cmd probe.Command) ([]byte, error) {
	x.mu.Lock()
	x.calls = append(x.calls, cmd)
	x.mu.Unlock()
	if !x.known(cmd.Path) {
		return nil, fmt.Errorf("%w: %s", probe.ErrToolNotFound, cmd.Path)
	}
	if x.Handle == nil {
		return nil, nil
	}
	return x.Handle(cmd)
}

func (x *Executor) known(path string) bool {
	if _, ok := x.Tools[path]; ok {
		return true
	}
	if _, ok := x.Tools[filepath.Base(path)]; ok {
		return true
	}
	for _, p := range x.Tools {
		if p == path {
			return true
		}
	}
	return false
}

// Calls returns the commands run so far.
func (x *Executor) Calls() []probe.Command {
	x.mu.Lock()
	defer x.mu.Unlock()
	return slices.Clone(x.calls)
}

// HasArg reports whether cmd was given arg.
func HasArg(cmd probe.Command, arg string) bool {
	return slices.Contains(cmd.Args, arg)
}

// Tool returns the base name of the program cmd runs.
func Tool(cmd probe.Command) string {
	return filepath.Base(cmd.Path)
}

// ErrExit is the error Handle functions return for a failing command.
var ErrExit = errors.New("exit status 1")
