package checks

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/pkgconfig"
	"github.com/goplus/llconf/internal/probe"
)

const pangoTest = `#include <pango/pango%s.h>
int main(void)
{
	PangoFontDescription *desc = pango_font_description_new();
	pango_font_description_free(desc);
	return 0;
}
`

// Pango checks for Pango with the backend named by its first argument
// ("cairo" by default). A GTK bundle in GTKDIR (or $GTK_BASEPATH) is
// searched for pkg-config and its .pc files first.
var Pango = probe.Func(slices.Concat(pkgconfig.Keys, []string{"ENV", "TOOLPATH"}), func(ctx *probe.Context) error {
	backend := argsOr(ctx, "cairo")[0]
	msg := "Pango"
	if v := ctx.Version(); v != "" {
		msg += " >= " + v
	}
	ctx.Message(msg + " with " + backend + " backend")

	e := ctx.Env()
	gtkdir := e.String("GTKDIR")
	if gtkdir == "" {
		gtkdir = os.Getenv("GTK_BASEPATH")
	}
	if gtkdir != "" {
		e.AppendUnique("TOOLPATH", filepath.Join(gtkdir, "bin"))
		vars := e.Map("ENV")
		if vars == nil {
			vars = make(map[string]any)
		}
		pcPath, _ := vars["PKG_CONFIG_PATH"].(string)
		if pcPath == "" {
			pcPath = os.Getenv("PKG_CONFIG_PATH")
		}
		vars["PKG_CONFIG_PATH"] = appendPath(pcPath, filepath.Join(gtkdir, "lib", "pkgconfig"))
		e.Set("ENV", vars)
	}

	pc, err := ctx.WhereIs(pkgConfig(ctx))
	if err != nil {
		return err
	}
	module := "pango" + backend
	if v := ctx.Version(); v != "" {
		have, err := ctx.Output(pc, "--modversion", module)
		if err != nil {
			return err
		}
		if err := ctx.CheckVersion(have); err != nil {
			return err
		}
	}
	flags, err := ctx.ParseConfig(pc, "--libs", "--cflags", module)
	if err != nil {
		return err
	}
	if err := ctx.TryLink(fmt.Sprintf(pangoTest, backend), ".c"); err != nil {
		return err
	}
	ctx.Register(feature.Registration{Name: module, Append: flags.Vars()})
	return nil
})

// appendPath adds dir to a search path list unless it is already there.
func appendPath(list, dir string) string {
	if list == "" {
		return dir
	}
	sep := string(os.PathListSeparator)
	if slices.Contains(strings.Split(list, sep), dir) {
		return list
	}
	return list + sep + dir
}
