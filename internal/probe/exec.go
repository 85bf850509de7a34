package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Command is one external tool invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	// Env overrides variables of the process environment.
	Env map[string]string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Executor runs the external tools probes depend on.
type Executor interface {
	// LookPath returns the path of the executable file, searching dirs
	// before the PATH of the process.
	LookPath(file string, dirs []string) (string, error)
	// Run runs cmd to completion and returns its combined output.
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// OS is the Executor backed by the operating system.
var OS Executor = osExecutor{}

type osExecutor struct{}

func (osExecutor) LookPath(file string, dirs []string) (string, error) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range candidates(file) {
			path := filepath.Join(dir, name)
			if isExecutable(path) {
				return path, nil
			}
		}
	}
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return out, fmt.Errorf("%w: %s", ErrToolNotFound, c.Path)
		}
		return out, err
	}
	return out, nil
}

func candidates(file string) []string {
	if runtime.GOOS == "windows" && filepath.Ext(file) == "" {
		return []string{file + ".exe", file}
	}
	return []string{file}
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return fi.Mode()&0o111 != 0
}

func mergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
