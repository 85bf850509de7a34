package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWorkDir(t *testing.T) {
	dir, err := WorkDir()
	if err != nil {
		t.Fatalf("WorkDir() returned error: %v", err)
	}
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		t.Fatalf("os.UserCacheDir() returned error: %v", err)
	}
	if want := filepath.Join(userCacheDir, ".llconf"); dir != want {
		t.Errorf("WorkDir() = %q, want %q", dir, want)
	}
}

func TestListsAreCopied(t *testing.T) {
	libs := []string{"GL"}
	e := New()
	e.Set("LIBS", libs)
	libs[0] = "changed"
	if got := e.List("LIBS"); !cmp.Equal(got, []string{"GL"}) {
		t.Fatalf("Set aliased the caller's slice: %v", got)
	}

	got := e.List("LIBS")
	got[0] = "changed"
	if got := e.List("LIBS"); !cmp.Equal(got, []string{"GL"}) {
		t.Fatalf("List aliased the store: %v", got)
	}

	nested := map[string]any{"inner": []string{"a"}}
	e.Set("BUILDERS", nested)
	nested["inner"].([]string)[0] = "b"
	if diff := cmp.Diff(map[string]any{"inner": []string{"a"}}, e.Map("BUILDERS")); diff != "" {
		t.Fatalf("nested map aliased (-want +got):\n%s", diff)
	}
}

func TestAppendUnique(t *testing.T) {
	e := New()
	e.AppendUnique("LIBS", "GLU", "GL")
	e.AppendUnique("LIBS", "GL", "m")
	if diff := cmp.Diff([]string{"GLU", "GL", "m"}, e.List("LIBS")); diff != "" {
		t.Errorf("AppendUnique (-want +got):\n%s", diff)
	}

	e.PrependUnique("LIBS", "z", "GL", "z")
	if diff := cmp.Diff([]string{"z", "GLU", "GL", "m"}, e.List("LIBS")); diff != "" {
		t.Errorf("PrependUnique (-want +got):\n%s", diff)
	}

	e.Set("CC", "gcc")
	e.Append("CC", "-m32")
	if diff := cmp.Diff([]string{"gcc", "-m32"}, e.List("CC")); diff != "" {
		t.Errorf("Append on scalar (-want +got):\n%s", diff)
	}
}

func TestScalars(t *testing.T) {
	e := FromMap(map[string]any{
		"CC":      "gcc",
		"VERBOSE": true,
		"QUIET":   "no",
		"FLAGS":   []string{"-O2", "-g"},
	})
	if got := e.String("FLAGS"); got != "-O2 -g" {
		t.Errorf(`String("FLAGS") = %q`, got)
	}
	if !e.Bool("VERBOSE") || e.Bool("QUIET") || e.Bool("MISSING") {
		t.Errorf("Bool mismatch")
	}
	e.SetDefault("CC", "clang")
	e.SetDefault("CXX", "g++")
	if e.String("CC") != "gcc" || e.String("CXX") != "g++" {
		t.Errorf("SetDefault: CC=%q CXX=%q", e.String("CC"), e.String("CXX"))
	}
	e.Delete("CC")
	if e.Has("CC") {
		t.Errorf("Delete left CC behind")
	}
	if diff := cmp.Diff([]string{"CXX", "FLAGS", "QUIET", "VERBOSE"}, e.Keys()); diff != "" {
		t.Errorf("Keys (-want +got):\n%s", diff)
	}
}

func TestSubst(t *testing.T) {
	e := FromMap(map[string]any{
		"QT4_MOC":    "/usr/bin/moc",
		"QT4_MOCCOM": "$QT4_MOC -o $TARGET $SOURCE",
		"LIBS":       []string{"GL", "GLU"},
		"LOOP":       "$LOOP",
	})
	tests := []struct {
		in   string
		want string
	}{
		{"$QT4_MOCCOM", "/usr/bin/moc -o out.cpp in.h"},
		{"${QT4_MOC}-x", "/usr/bin/moc-x"},
		{"libs: $LIBS", "libs: GL GLU"},
		{"cost $$5", "cost $5"},
		{"$UNKNOWN.", "."},
		{"tail $", "tail $"},
		{"${BROKEN", "${BROKEN"},
		{"$LOOP", ""},
	}
	extra := map[string]string{"TARGET": "out.cpp", "SOURCE": "in.h"}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := e.Subst(tt.in, extra); got != tt.want {
				t.Errorf("Subst(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	e := FromMap(map[string]any{"LIBS": []string{"GL"}})
	c := e.Clone()
	c.AppendUnique("LIBS", "GLU")
	if diff := cmp.Diff([]string{"GL"}, e.List("LIBS")); diff != "" {
		t.Errorf("Clone shares storage (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"LIBS": []string{"GL", "GLU"}}, c.Dump()); diff != "" {
		t.Errorf("Dump (-want +got):\n%s", diff)
	}
}
