// Package checks holds the built-in probes for optional native
// dependencies.
package checks

import (
	"github.com/goplus/llconf/internal/probe"
)

// Register adds every built-in probe to r.
func Register(r *probe.Registry) {
	r.Register("graphics", Graphics)
	r.Register("glew", GLEW)
	r.Register("boost", Boost)
	r.Register("sdl", SDL)
	r.Register("qt4-tools", Qt4Tools)
	r.Register("qt4-libs", Qt4Libs)
	r.Register("pango", Pango)
	r.Register("nsis", NSIS)
}

// NewRegistry returns a registry holding the built-in probes.
func NewRegistry() *probe.Registry {
	r := probe.NewRegistry()
	Register(r)
	return r
}

func argsOr(ctx *probe.Context, def ...string) []string {
	if args := ctx.Args(); len(args) > 0 {
		return args
	}
	return def
}

// pkgConfig returns the pkg-config program to run, PKG_CONFIG when set.
func pkgConfig(ctx *probe.Context) string {
	if tool := ctx.Env().String("PKG_CONFIG"); tool != "" {
		return tool
	}
	return "pkg-config"
}
