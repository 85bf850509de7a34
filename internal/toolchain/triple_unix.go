//go:build unix

package toolchain

import (
	"strings"

	"golang.org/x/sys/unix"
)

// BuildTriple returns a triple describing the machine running the build,
// such as "x86_64-linux".
func BuildTriple() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return fallbackTriple()
	}
	machine := unix.ByteSliceToString(u.Machine[:])
	sysname := strings.ToLower(unix.ByteSliceToString(u.Sysname[:]))
	if machine == "" || sysname == "" {
		return fallbackTriple()
	}
	return machine + "-" + sysname
}
