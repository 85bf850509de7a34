package toolchain

import (
	"errors"
	"maps"
	"runtime"

	"github.com/goplus/llconf/internal/env"
)

// RetargetedKey marks an environment whose toolchain has been retargeted.
const RetargetedKey = "TOOLCHAIN_HOST"

// ErrAlreadyRetargeted is returned when Retarget runs twice on the same
// environment.
var ErrAlreadyRetargeted = errors.New("toolchain already retargeted")

// Tools lists the keys holding tool names that get a host prefix.
var Tools = []string{"CC", "CXX", "AR", "RANLIB"}

var defaultTools = map[string]string{
	"CC":     "gcc",
	"CXX":    "g++",
	"AR":     "ar",
	"RANLIB": "ranlib",
}

// Spec describes the toolchain selected for a session. It does not change
// after Retarget returns.
type Spec struct {
	// Host is the target triple, empty for a native build.
	Host     string
	Platform Platform
	// Tools maps each retargeted key to its new tool name.
	Tools map[string]string
}

// Cross reports whether the spec targets another system.
func (s Spec) Cross() bool {
	return s.Host != ""
}

// NativePlatform returns the platform of the machine running the build.
func NativePlatform() Platform {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return POSIX
}

// Defaults seeds e with the default tool names and the conventions of p.
// Keys that are already set are left alone.
func Defaults(e *env.Env, p Platform) {
	for k, v := range defaultTools {
		e.SetDefault(k, v)
	}
	for k, v := range p.vars() {
		e.SetDefault(k, v)
	}
}

// Retarget rewrites the tool names of e for host. With a non-empty host,
// every key in Tools is prefixed with "host-" and the platform conventions
// of the host are written over the native ones. With an empty host e is
// not modified. Retarget must run once per session, before any probe.
func Retarget(e *env.Env, host string) (Spec, error) {
	if e.Has(RetargetedKey) {
		return Spec{}, ErrAlreadyRetargeted
	}
	spec := Spec{Host: host, Platform: NativePlatform(), Tools: map[string]string{}}
	if p, err := ParsePlatform(e.String("PLATFORM")); err == nil && e.Has("PLATFORM") {
		spec.Platform = p
	}
	if host == "" {
		return spec, nil
	}

	spec.Platform = PlatformOf(host)
	for k, v := range spec.Platform.vars() {
		e.Set(k, v)
	}
	for _, tool := range Tools {
		name := e.String(tool)
		if name == "" {
			name = defaultTools[tool]
		}
		spec.Tools[tool] = host + "-" + name
		e.Set(tool, spec.Tools[tool])
	}
	e.Set(RetargetedKey, host)
	return spec, nil
}

// Clone returns a copy of s that does not share its tool map.
func (s Spec) Clone() Spec {
	s.Tools = maps.Clone(s.Tools)
	return s
}
