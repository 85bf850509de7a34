// Package pkgconfig sorts the output of pkg-config style tools into the
// compiler and linker variables of an environment.
package pkgconfig

import (
	"strings"

	"github.com/goplus/llconf/internal/env"
)

// Keys lists every environment key Merge may write.
var Keys = []string{
	"CPPPATH", "CPPDEFINES", "CCFLAGS", "LIBPATH", "LIBS", "LINKFLAGS", "FRAMEWORKS",
}

// Flags holds the parsed form of a tool's --cflags/--libs output.
type Flags struct {
	CPPPath    []string
	CPPDefines []string
	CCFlags    []string
	LibPath    []string
	Libs       []string
	LinkFlags  []string
	Frameworks []string
}

// Empty reports whether no flag was parsed.
func (f Flags) Empty() bool {
	return len(f.CPPPath)+len(f.CPPDefines)+len(f.CCFlags)+len(f.LibPath)+
		len(f.Libs)+len(f.LinkFlags)+len(f.Frameworks) == 0
}

// Parse sorts the flags in out. Options that take a separate argument
// ("-framework", "-isystem", "-include") consume the next word. Words that
// are not options are taken to be library files and go to Libs.
func Parse(out string) Flags {
	var f Flags
	words := Split(out)
	for i := 0; i < len(words); i++ {
		w := words[i]
		next := func() string {
			if i+1 < len(words) {
				i++
				return words[i]
			}
			return ""
		}
		switch {
		case w == "-framework":
			if v := next(); v != "" {
				f.Frameworks = append(f.Frameworks, v)
			}
		case w == "-isystem" || w == "-include" || w == "-arch":
			if v := next(); v != "" {
				f.CCFlags = append(f.CCFlags, w, v)
			}
		case w == "-pthread":
			f.CCFlags = append(f.CCFlags, w)
			f.LinkFlags = append(f.LinkFlags, w)
		case strings.HasPrefix(w, "-I"):
			f.CPPPath = appendArg(f.CPPPath, w[2:], next)
		case strings.HasPrefix(w, "-D"):
			f.CPPDefines = appendArg(f.CPPDefines, w[2:], next)
		case strings.HasPrefix(w, "-L"):
			f.LibPath = appendArg(f.LibPath, w[2:], next)
		case strings.HasPrefix(w, "-l"):
			f.Libs = appendArg(f.Libs, w[2:], next)
		case strings.HasPrefix(w, "-Wl,"), strings.HasPrefix(w, "-rdynamic"):
			f.LinkFlags = append(f.LinkFlags, w)
		case strings.HasPrefix(w, "-"):
			f.CCFlags = append(f.CCFlags, w)
		default:
			f.Libs = append(f.Libs, w)
		}
	}
	return f
}

// appendArg handles both "-Ipath" and "-I path".
func appendArg(list []string, v string, next func() string) []string {
	if v == "" {
		v = next()
	}
	if v == "" {
		return list
	}
	return append(list, v)
}

// Vars returns the non-empty flag lists of f keyed by environment key, in
// the form a capability registration appends.
func (f Flags) Vars() map[string][]string {
	vars := make(map[string][]string)
	add := func(key string, vals []string) {
		if len(vals) > 0 {
			vars[key] = append(vars[key], vals...)
		}
	}
	add("CPPPATH", f.CPPPath)
	add("CPPDEFINES", f.CPPDefines)
	add("CCFLAGS", f.CCFlags)
	add("LIBPATH", f.LibPath)
	add("LIBS", f.Libs)
	add("LINKFLAGS", f.LinkFlags)
	add("FRAMEWORKS", f.Frameworks)
	return vars
}

// Merge appends f to e. Values already present are not added again.
func Merge(e *env.Env, f Flags) {
	for key, vals := range f.Vars() {
		e.AppendUnique(key, vals...)
	}
}
