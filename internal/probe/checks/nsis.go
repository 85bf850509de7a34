package checks

import (
	"runtime"

	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/installer"
	"github.com/goplus/llconf/internal/probe"
)

// NSIS checks for the makensis installer compiler. On success it sets
// MAKENSIS and provides the builders "NSISScript", which renders a
// *.nsi.template into a script, and "Installer", which compiles a script
// into an installer executable.
var NSIS = probe.Func([]string{"MAKENSIS"}, func(ctx *probe.Context) error {
	ctx.Message("makensis")
	e := ctx.Env()

	var dirs []string
	if dir := e.String("NSISDIR"); dir != "" {
		dirs = append(dirs, dir)
	}
	makensis, err := ctx.WhereIs("makensis", dirs...)
	if err != nil {
		return err
	}
	e.Set("MAKENSIS", makensis)

	flag := "-VERSION"
	if runtime.GOOS == "windows" {
		flag = "/VERSION"
	}
	if err := ctx.TryAction(makensis, flag); err != nil {
		return err
	}
	ctx.Register(
		feature.Registration{
			Name: "NSISScript",
			Builder: &feature.Builder{
				Generator: installer.GeneratorName,
				SrcSuffix: ".nsi.template",
				Suffix:    ".nsi",
				ComStr:    "NSISSCRIPTCOMSTR",
			},
		},
		feature.Registration{
			Name: "Installer",
			Set:  map[string]string{"MAKENSIS": makensis},
			Builder: &feature.Builder{
				Action:     "$MAKENSIS $SOURCE",
				SrcSuffix:  ".nsi",
				Suffix:     ".exe",
				SrcBuilder: "NSISScript",
				ComStr:     "MAKENSISCOMSTR",
			},
		},
	)
	return nil
})
