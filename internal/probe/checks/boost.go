package checks

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/probe"
	"github.com/goplus/llconf/pkgs/version"
)

// boostHeaders lists the libraries whose header is not <boost/lib.hpp>.
var boostHeaders = map[string]string{
	"regex":           "regex/config.hpp",
	"program_options": "program_options/config.hpp",
}

func boostHeader(lib string) string {
	if h, ok := boostHeaders[lib]; ok {
		return h
	}
	return lib + ".hpp"
}

// boostVersion returns the value of BOOST_VERSION for v, e.g. 103400 for
// "1.34".
func boostVersion(v string) int {
	p := version.Parts(v, 3)
	return p[0]*100000 + p[1]*100 + p[2]
}

func boostTest(libs []string, minVersion string) string {
	var b strings.Builder
	if len(libs) == 0 {
		b.WriteString("#include <boost/version.hpp>\n")
	}
	for _, lib := range libs {
		fmt.Fprintf(&b, "#include <boost/%s>\n", boostHeader(lib))
	}
	b.WriteString(boostVersionCheck(minVersion))
	b.WriteString(boostMain)
	return b.String()
}

func boostVersionCheck(minVersion string) string {
	if minVersion == "" {
		return ""
	}
	return fmt.Sprintf("#include <boost/version.hpp>\n#if BOOST_VERSION < %d\n#error Boost version is too old!\n#endif\n",
		boostVersion(minVersion))
}

// Boost checks for the Boost libraries named in its arguments, looking in
// BOOSTDIR and BOOSTLIBS when set. Without arguments only the headers are
// checked. A minimum version is enforced by the trial program itself.
// When linking fails and BOOST_SUFFIX is unset, the check is retried with
// the "-mt" library suffix.
//
// It provides "boost" and one "boost_<lib>" capability per library.
var Boost = probe.Func([]string{"CPPPATH", "LIBPATH", "LIBS", "BOOST_SUFFIX"}, func(ctx *probe.Context) error {
	var libs []string
	for _, lib := range ctx.Args() {
		if !slices.Contains(libs, lib) {
			libs = append(libs, lib)
		}
	}
	msg := "Boost"
	if len(libs) > 0 {
		msg = fmt.Sprintf("Boost %s library", strings.Join(libs, ", "))
	}
	if v := ctx.Version(); v != "" {
		msg += " version >= " + v
	}
	ctx.Message(msg)

	e := ctx.Env()
	attempt := func() (map[string][]string, error) {
		vars := make(map[string][]string)
		if dir := e.String("BOOSTDIR"); dir != "" {
			vars["CPPPATH"] = []string{dir}
		}
		if dir := e.String("BOOSTLIBS"); dir != "" {
			vars["LIBPATH"] = []string{dir}
		}
		for _, lib := range libs {
			vars["LIBS"] = append(vars["LIBS"], "boost_"+lib+e.String("BOOST_SUFFIX"))
		}
		for k, v := range vars {
			e.AppendUnique(k, v...)
		}
		return vars, ctx.TryLink(boostTest(libs, ctx.Version()), ".cpp")
	}

	vars, err := attempt()
	if err != nil && len(libs) > 0 && e.String("BOOST_SUFFIX") == "" && !errors.Is(err, probe.ErrToolNotFound) {
		ctx.Logf("retrying with -mt suffix")
		ctx.Rollback()
		e.Set("BOOST_SUFFIX", "-mt")
		vars, err = attempt()
	}
	if err != nil {
		if errors.Is(err, probe.ErrLinkFailed) && ctx.Version() != "" {
			return boostTooOld(ctx, err)
		}
		return err
	}

	common := make(map[string][]string)
	for _, k := range []string{"CPPPATH", "LIBPATH"} {
		if len(vars[k]) > 0 {
			common[k] = vars[k]
		}
	}
	ctx.Register(feature.Registration{Name: "boost", Append: common})
	for i, lib := range libs {
		ctx.Register(feature.Registration{
			Name:   "boost_" + lib,
			Append: map[string][]string{"LIBS": {vars["LIBS"][i]}},
		})
	}
	return nil
})

const boostMain = "int main()\n{\n\treturn 0;\n}\n"

// boostTooOld tells an old Boost from a missing one by compiling the
// version assertion alone.
func boostTooOld(ctx *probe.Context, linkErr error) error {
	if err := ctx.TryCompile("#include <boost/version.hpp>\n"+boostMain, ".cpp"); err != nil {
		return linkErr
	}
	if err := ctx.TryCompile(boostVersionCheck(ctx.Version())+boostMain, ".cpp"); err != nil {
		return &probe.Error{
			Probe: ctx.Name(),
			Op:    "version",
			Err:   fmt.Errorf("%w: want >= %s", probe.ErrVersionTooLow, ctx.Version()),
		}
	}
	return linkErr
}
