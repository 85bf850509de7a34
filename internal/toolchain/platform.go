// Package toolchain selects the platform conventions of a build and
// rewrites tool names when cross-compiling.
package toolchain

import (
	"fmt"
	"strings"
)

// Platform is the family of the system the build targets.
type Platform int

const (
	// POSIX covers Linux, the BSDs and macOS.
	POSIX Platform = iota
	// Windows covers native and MinGW targets.
	Windows
)

// String returns the value stored under the PLATFORM key.
func (p Platform) String() string {
	switch p {
	case POSIX:
		return "posix"
	case Windows:
		return "win32"
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

// ParsePlatform maps a PLATFORM value back to its Platform.
func ParsePlatform(s string) (Platform, error) {
	switch s {
	case "posix", "":
		return POSIX, nil
	case "win32":
		return Windows, nil
	}
	return 0, fmt.Errorf("unknown platform %q", s)
}

// Conventions holds the platform-specific names and suffixes.
type Conventions struct {
	ProgSuffix  string
	ObjSuffix   string
	LibPrefix   string
	LibSuffix   string
	ShLibSuffix string
	PathSep     string
}

var conventions = map[Platform]Conventions{
	POSIX: {
		ProgSuffix:  "",
		ObjSuffix:   ".o",
		LibPrefix:   "lib",
		LibSuffix:   ".a",
		ShLibSuffix: ".so",
		PathSep:     ":",
	},
	Windows: {
		ProgSuffix:  ".exe",
		ObjSuffix:   ".o",
		LibPrefix:   "lib",
		LibSuffix:   ".a",
		ShLibSuffix: ".dll",
		PathSep:     ";",
	},
}

// Conventions returns the naming table of p.
func (p Platform) Conventions() Conventions {
	return conventions[p]
}

// vars returns the environment keys set from the conventions of p.
func (p Platform) vars() map[string]string {
	c := p.Conventions()
	return map[string]string{
		"PLATFORM":    p.String(),
		"PROGSUFFIX":  c.ProgSuffix,
		"OBJSUFFIX":   c.ObjSuffix,
		"LIBPREFIX":   c.LibPrefix,
		"LIBSUFFIX":   c.LibSuffix,
		"SHLIBSUFFIX": c.ShLibSuffix,
	}
}

// windowsSystems are the triple components that denote a Windows target.
var windowsSystems = []string{"mingw", "windows", "cygwin", "msys", "win32"}

// PlatformOf returns the platform a host triple builds for. An empty triple
// yields POSIX.
func PlatformOf(host string) Platform {
	host = strings.ToLower(host)
	for _, part := range strings.Split(host, "-") {
		for _, sys := range windowsSystems {
			if strings.HasPrefix(part, sys) {
				return Windows
			}
		}
	}
	return POSIX
}
