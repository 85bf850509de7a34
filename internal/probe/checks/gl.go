package checks

import (
	"fmt"
	"strings"

	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/probe"
	"github.com/goplus/llconf/internal/toolchain"
)

// glNames maps OpenGL library keys to the library to link per platform.
var glNames = map[toolchain.Platform]map[string]string{
	toolchain.POSIX:   {"gl": "GL", "glu": "GLU"},
	toolchain.Windows: {"gl": "opengl32", "glu": "glu32"},
}

var glewLibs = map[toolchain.Platform][]string{
	toolchain.POSIX:   {"GLEW", "GLU", "GL"},
	toolchain.Windows: {"glew32", "glu32", "opengl32"},
}

// Graphics checks for OpenGL. Its arguments select the libraries, "gl"
// (the default) and "glu". It provides the "opengl" capability, plus
// "glu" when requested.
var Graphics = probe.Func([]string{"LIBS"}, func(ctx *probe.Context) error {
	ctx.Message("OpenGL")
	names := glNames[ctx.Platform()]

	var (
		libs []string
		src  strings.Builder
	)
	for _, key := range argsOr(ctx, "gl") {
		name, ok := names[key]
		if !ok {
			return fmt.Errorf("unknown OpenGL library %q", key)
		}
		libs = append(libs, name)
		fmt.Fprintf(&src, "#include <GL/%s.h>\n", key)
	}
	src.WriteString("int main(void) { return 0; }\n")

	ctx.Env().AppendUnique("LIBS", libs...)
	if err := ctx.TryLink(src.String(), ".c"); err != nil {
		return err
	}
	ctx.Register(feature.Registration{Name: "opengl", Append: map[string][]string{"LIBS": libs}})
	for _, key := range ctx.Args() {
		if key == "glu" {
			ctx.Register(feature.Registration{Name: "glu", Append: map[string][]string{"LIBS": {names["glu"]}}})
		}
	}
	return nil
})

const glewTest = `#include <GL/glew.h>
int main(void)
{
	glewInit();
	return 0;
}
`

// GLEW checks for the OpenGL Extension Wrangler.
var GLEW = probe.Func([]string{"LIBS"}, func(ctx *probe.Context) error {
	ctx.Message("OpenGL Extension Wrangler")
	libs := glewLibs[ctx.Platform()]
	ctx.Env().AppendUnique("LIBS", libs...)
	if err := ctx.TryLink(glewTest, ".c"); err != nil {
		return err
	}
	ctx.Register(feature.Registration{Name: "glew", Append: map[string][]string{"LIBS": libs}})
	return nil
})
