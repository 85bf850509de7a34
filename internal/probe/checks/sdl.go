package checks

import (
	"errors"
	"path/filepath"

	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/pkgconfig"
	"github.com/goplus/llconf/internal/probe"
)

const sdlTest = `#include <SDL.h>
int main(int argc, char *argv[])
{
	SDL_Init(0);
	SDL_Quit();
	return 0;
}
`

// SDL checks for the SDL library through pkg-config, falling back to
// sdl-config (searched in SDLDIR/bin first) when pkg-config does not know
// it.
var SDL = probe.Func(pkgconfig.Keys, func(ctx *probe.Context) error {
	msg := "SDL"
	if v := ctx.Version(); v != "" {
		msg += " >= " + v
	}
	ctx.Message(msg)

	flags, err := sdlFromPkgConfig(ctx)
	if errors.Is(err, probe.ErrVersionTooLow) {
		return err
	}
	if err != nil {
		ctx.Logf("pkg-config: %v", err)
		ctx.Rollback()
		if flags, err = sdlFromConfigScript(ctx); err != nil {
			return err
		}
	}
	if err := ctx.TryLink(sdlTest, ".c"); err != nil {
		return err
	}
	ctx.Register(feature.Registration{Name: "sdl", Append: flags.Vars()})
	return nil
})

func sdlFromPkgConfig(ctx *probe.Context) (pkgconfig.Flags, error) {
	pc, err := ctx.WhereIs(pkgConfig(ctx))
	if err != nil {
		return pkgconfig.Flags{}, err
	}
	if v := ctx.Version(); v != "" {
		have, err := ctx.Output(pc, "--modversion", "sdl")
		if err != nil {
			return pkgconfig.Flags{}, err
		}
		if err := ctx.CheckVersion(have); err != nil {
			return pkgconfig.Flags{}, err
		}
	}
	return ctx.ParseConfig(pc, "--cflags", "--libs", "sdl")
}

func sdlFromConfigScript(ctx *probe.Context) (pkgconfig.Flags, error) {
	var dirs []string
	if dir := ctx.Env().String("SDLDIR"); dir != "" {
		dirs = append(dirs, filepath.Join(dir, "bin"))
	}
	script, err := ctx.WhereIs("sdl-config", dirs...)
	if err != nil {
		return pkgconfig.Flags{}, err
	}
	if v := ctx.Version(); v != "" {
		have, err := ctx.Output(script, "--version")
		if err != nil {
			return pkgconfig.Flags{}, err
		}
		if err := ctx.CheckVersion(have); err != nil {
			return pkgconfig.Flags{}, err
		}
	}
	return ctx.ParseConfig(script, "--cflags", "--libs")
}
