package toolchain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goplus/llconf/internal/env"
)

func TestPlatformOf(t *testing.T) {
	tests := []struct {
		host string
		want Platform
	}{
		{"", POSIX},
		{"i686-w64-mingw32", Windows},
		{"x86_64-pc-windows-gnu", Windows},
		{"i686-pc-cygwin", Windows},
		{"x86_64-pc-msys", Windows},
		{"arm-linux-gnueabihf", POSIX},
		{"aarch64-apple-darwin", POSIX},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := PlatformOf(tt.host); got != tt.want {
				t.Errorf("PlatformOf(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestRetargetMinGW(t *testing.T) {
	e := env.New()
	Defaults(e, POSIX)

	spec, err := Retarget(e, "i686-w64-mingw32")
	if err != nil {
		t.Fatalf("Retarget: %v", err)
	}
	if got := e.String("CC"); got != "i686-w64-mingw32-gcc" {
		t.Errorf("CC = %q, want i686-w64-mingw32-gcc", got)
	}
	want := map[string]string{
		"CC":     "i686-w64-mingw32-gcc",
		"CXX":    "i686-w64-mingw32-g++",
		"AR":     "i686-w64-mingw32-ar",
		"RANLIB": "i686-w64-mingw32-ranlib",
	}
	if diff := cmp.Diff(want, spec.Tools); diff != "" {
		t.Errorf("spec.Tools (-want +got):\n%s", diff)
	}
	if spec.Platform != Windows || !spec.Cross() {
		t.Errorf("spec = %+v", spec)
	}
	if got := e.String("PLATFORM"); got != "win32" {
		t.Errorf("PLATFORM = %q", got)
	}
	if got := e.String("PROGSUFFIX"); got != ".exe" {
		t.Errorf("PROGSUFFIX = %q", got)
	}
	if got := e.String("SHLIBSUFFIX"); got != ".dll" {
		t.Errorf("SHLIBSUFFIX = %q", got)
	}

	if _, err := Retarget(e, "i686-w64-mingw32"); !errors.Is(err, ErrAlreadyRetargeted) {
		t.Errorf("second Retarget error = %v, want ErrAlreadyRetargeted", err)
	}
	if got := e.String("CC"); got != "i686-w64-mingw32-gcc" {
		t.Errorf("CC after second Retarget = %q", got)
	}
}

func TestRetargetKeepsCustomTool(t *testing.T) {
	e := env.FromMap(map[string]any{"CC": "clang"})
	if _, err := Retarget(e, "aarch64-linux-gnu"); err != nil {
		t.Fatal(err)
	}
	if got := e.String("CC"); got != "aarch64-linux-gnu-clang" {
		t.Errorf("CC = %q", got)
	}
	if got := e.String("AR"); got != "aarch64-linux-gnu-ar" {
		t.Errorf("AR = %q", got)
	}
	if got := e.String("PLATFORM"); got != "posix" {
		t.Errorf("PLATFORM = %q", got)
	}
}

func TestRetargetEmptyHost(t *testing.T) {
	e := env.New()
	Defaults(e, POSIX)
	before := e.Dump()

	spec, err := Retarget(e, "")
	if err != nil {
		t.Fatalf("Retarget: %v", err)
	}
	if spec.Cross() || len(spec.Tools) != 0 {
		t.Errorf("spec = %+v", spec)
	}
	if diff := cmp.Diff(before, e.Dump()); diff != "" {
		t.Errorf("environment changed (-want +got):\n%s", diff)
	}
}

func TestDefaultsKeepsExisting(t *testing.T) {
	e := env.FromMap(map[string]any{"CC": "cc", "PROGSUFFIX": ".bin"})
	Defaults(e, Windows)
	if got := e.String("CC"); got != "cc" {
		t.Errorf("CC = %q", got)
	}
	if got := e.String("PROGSUFFIX"); got != ".bin" {
		t.Errorf("PROGSUFFIX = %q", got)
	}
	if got := e.String("CXX"); got != "g++" {
		t.Errorf("CXX = %q", got)
	}
	if got := e.String("PLATFORM"); got != "win32" {
		t.Errorf("PLATFORM = %q", got)
	}
}

func TestParsePlatform(t *testing.T) {
	for _, p := range []Platform{POSIX, Windows} {
		got, err := ParsePlatform(p.String())
		if err != nil || got != p {
			t.Errorf("ParsePlatform(%q) = %v, %v", p, got, err)
		}
	}
	if _, err := ParsePlatform("amiga"); err == nil {
		t.Error("ParsePlatform(amiga) succeeded")
	}
}

func TestBuildTriple(t *testing.T) {
	triple := BuildTriple()
	if !strings.Contains(triple, "-") {
		t.Errorf("BuildTriple() = %q", triple)
	}
}
