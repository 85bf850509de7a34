package feature

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goplus/llconf/internal/env"
)

func TestCommit(t *testing.T) {
	e := env.FromMap(map[string]any{"LIBS": []string{"m"}})
	regs := []Registration{
		{Name: "opengl", Append: map[string][]string{"LIBS": {"GL", "m"}}},
		{Name: "Installer", Set: map[string]string{"MAKENSIS": "/usr/bin/makensis"},
			Builder: &Builder{Action: "$MAKENSIS $SOURCE", SrcSuffix: ".nsi", Suffix: ".exe"}},
	}
	if err := Commit(e, "nsis", regs); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if diff := cmp.Diff([]string{"m", "GL"}, e.List("LIBS")); diff != "" {
		t.Errorf("LIBS (-want +got):\n%s", diff)
	}
	if got := e.String("MAKENSIS"); got != "/usr/bin/makensis" {
		t.Errorf("MAKENSIS = %q", got)
	}
	if !Available(e, "opengl") || !Available(e, "Installer") || Available(e, "glew") {
		t.Errorf("Available mismatch: %v", Names(e))
	}
	b, ok := Lookup(e, "Installer")
	if !ok {
		t.Fatal("Lookup(Installer) failed")
	}
	if b.Name != "Installer" {
		t.Errorf("builder name = %q", b.Name)
	}
	if diff := cmp.Diff([]string{"Installer", "opengl"}, Owned(e, "nsis")); diff != "" {
		t.Errorf("Owned (-want +got):\n%s", diff)
	}

	// Committing the same set again leaves the environment unchanged.
	before := e.Dump()
	if err := Commit(e, "nsis", regs); err != nil {
		t.Fatalf("second Commit: %v", err)
	}
	if diff := cmp.Diff(before, e.Dump()); diff != "" {
		t.Errorf("Commit not idempotent (-want +got):\n%s", diff)
	}
}

func TestCommitAllOrNothing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *env.Env)
		regs  []Registration
	}{
		{
			name: "empty name",
			regs: []Registration{
				{Name: "ok", Append: map[string][]string{"LIBS": {"GL"}}},
				{Append: map[string][]string{"LIBS": {"GLU"}}},
			},
		},
		{
			name: "duplicate",
			regs: []Registration{
				{Name: "glew", Append: map[string][]string{"LIBS": {"GLEW"}}},
				{Name: "glew"},
			},
		},
		{
			name: "reserved key",
			regs: []Registration{
				{Name: "x", Set: map[string]string{BuildersKey: "nope"}},
			},
		},
		{
			name: "builder without action",
			regs: []Registration{
				{Name: "ok", Append: map[string][]string{"LIBS": {"GL"}}},
				{Name: "Moc4", Builder: &Builder{}},
			},
		},
		{
			name: "owned by another probe",
			setup: func(e *env.Env) {
				if err := Commit(e, "graphics", []Registration{{Name: "opengl"}}); err != nil {
					t.Fatal(err)
				}
			},
			regs: []Registration{
				{Name: "glew", Append: map[string][]string{"LIBS": {"GLEW"}}},
				{Name: "opengl"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := env.New()
			if tt.setup != nil {
				tt.setup(e)
			}
			before := e.Dump()
			err := Commit(e, "glew", tt.regs)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Commit error = %v, want ErrInvalid", err)
			}
			if diff := cmp.Diff(before, e.Dump()); diff != "" {
				t.Errorf("partial commit (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	e := env.New()
	if err := Commit(e, "qt4-tools", []Registration{
		{Name: "Moc4", Builder: &Builder{Action: "$QT4_MOCCOM"}},
		{Name: "Uic4", Builder: &Builder{Action: "$QT4_UICCOM"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := Commit(e, "graphics", []Registration{{Name: "opengl"}}); err != nil {
		t.Fatal(err)
	}

	removed := Withdraw(e, "qt4-tools")
	if diff := cmp.Diff([]string{"Moc4", "Uic4"}, removed); diff != "" {
		t.Errorf("Withdraw (-want +got):\n%s", diff)
	}
	if _, ok := Lookup(e, "Moc4"); ok {
		t.Error("Moc4 builder survived Withdraw")
	}
	if diff := cmp.Diff([]string{"opengl"}, Names(e)); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
	if got := Withdraw(e, "qt4-tools"); got != nil {
		t.Errorf("second Withdraw = %v", got)
	}
}

func TestBuilderTarget(t *testing.T) {
	e := env.FromMap(map[string]any{
		"QT4_UICDECLPREFIX": "ui_",
		"QT4_UICDECLSUFFIX": ".h",
		"QT4_UISUFFIX":      ".ui",
		"QT4_UIC":           "/usr/bin/uic",
		"QT4_UICCOM":        "$QT4_UIC -o $TARGET $SOURCE",
		"QT4_UICCOMSTR":     "Compiling user interface: $SOURCE ...",
	})
	uic := Builder{
		Name:      "Uic4",
		Action:    "$QT4_UICCOM",
		Prefix:    "$QT4_UICDECLPREFIX",
		Suffix:    "$QT4_UICDECLSUFFIX",
		SrcSuffix: "$QT4_UISUFFIX",
		ComStr:    "QT4_UICCOMSTR",
	}
	src := filepath.Join("editor", "mainwindow.ui")
	target := uic.Target(e, src)
	if want := filepath.Join("editor", "ui_mainwindow.h"); target != want {
		t.Errorf("Target = %q, want %q", target, want)
	}
	want := []string{"/usr/bin/uic", "-o", target, src}
	if diff := cmp.Diff(want, uic.Command(e, target, src)); diff != "" {
		t.Errorf("Command (-want +got):\n%s", diff)
	}
	if got := uic.Message(e, target, src); got != "Compiling user interface: "+src+" ..." {
		t.Errorf("Message = %q", got)
	}

	nsis := Builder{Generator: "nsis-script", SrcSuffix: ".nsi.template", Suffix: ".nsi"}
	if got := nsis.Target(e, "installer.nsi.template"); got != "installer.nsi" {
		t.Errorf("generator Target = %q", got)
	}
	if got := nsis.Command(e, "a", "b"); got != nil {
		t.Errorf("generator Command = %v", got)
	}
}

func TestBuilderCommandSpacedPath(t *testing.T) {
	installer := Builder{Name: "Installer", Action: "$MAKENSIS $MAKENSISFLAGS $SOURCE"}
	tests := []struct {
		name     string
		makensis string
		source   string
		want     []string
	}{
		{"unix", "/opt/NSIS Tools/makensis", "game.nsi", []string{"/opt/NSIS Tools/makensis", "/V2", "game.nsi"}},
		{"windows", `C:\Program Files (x86)\NSIS\makensis.exe`, "game.nsi", []string{`C:\Program Files (x86)\NSIS\makensis.exe`, "/V2", "game.nsi"}},
		{"spaced source", "makensis", "my game/setup.nsi", []string{"makensis", "/V2", "my game/setup.nsi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := env.FromMap(map[string]any{
				"MAKENSIS":      tt.makensis,
				"MAKENSISFLAGS": []string{"/V2"},
			})
			if diff := cmp.Diff(tt.want, installer.Command(e, "setup.exe", tt.source)); diff != "" {
				t.Errorf("Command (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuilderCommandNested(t *testing.T) {
	e := env.FromMap(map[string]any{
		"QT4_MOC":      "/opt/Qt 4.8/bin/moc",
		"QT4_MOCFLAGS": []string{},
		"QT4_MOCCOM":   "$QT4_MOC $QT4_MOCFLAGS -o ${TARGET} $SOURCE",
	})
	moc := Builder{Name: "Moc4", Action: "$QT4_MOCCOM"}
	want := []string{"/opt/Qt 4.8/bin/moc", "-o", "moc_window.cpp", "window.h"}
	if diff := cmp.Diff(want, moc.Command(e, "moc_window.cpp", "window.h")); diff != "" {
		t.Errorf("Command (-want +got):\n%s", diff)
	}
}

var echoed []string

func init() {
	RegisterGenerator("test-echo", func(e *env.Env, target, source string) error {
		echoed = append(echoed, target, source)
		return nil
	})
}

func TestGenerate(t *testing.T) {
	echoed = nil
	b := Builder{Name: "Echo", Generator: "test-echo"}
	if err := Generate(env.New(), b, "out", "in"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if diff := cmp.Diff([]string{"out", "in"}, echoed); diff != "" {
		t.Errorf("generator args (-want +got):\n%s", diff)
	}
	if err := Generate(env.New(), Builder{Name: "X", Generator: "missing"}, "a", "b"); err == nil {
		t.Error("Generate with unknown generator succeeded")
	}
}
