package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goplus/llconf/internal/config"
	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/probe"
	"github.com/goplus/llconf/internal/probe/probetest"
	"github.com/goplus/llconf/internal/session"
)

func TestParseRequests(t *testing.T) {
	tests := []struct {
		name     string
		require  []string
		optional []string
		want     []probe.Request
		wantErr  bool
	}{
		{
			name:     "mixed",
			require:  []string{"graphics:gl,glu"},
			optional: []string{"sdl>=1.2", "nsis"},
			want: []probe.Request{
				{Name: "graphics", Args: []string{"gl", "glu"}, Mandatory: true},
				{Name: "sdl", Version: "1.2"},
				{Name: "nsis"},
			},
		},
		{
			name:     "required wins",
			require:  []string{"boost:regex"},
			optional: []string{"boost:regex"},
			want:     []probe.Request{{Name: "boost", Args: []string{"regex"}, Mandatory: true}},
		},
		{
			name:     "bad request",
			optional: []string{">=1.0"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRequests(tt.require, tt.optional)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRequests() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseRequests() (-want +got):\n%s", diff)
			}
		})
	}
}

func nsisState() *session.State {
	return &session.State{
		Platform:     "win32",
		Capabilities: map[string]string{"NSISScript": "nsis", "Installer": "nsis"},
		Builders: map[string]feature.Builder{
			"NSISScript": {Name: "NSISScript", Generator: "nsis-script", SrcSuffix: ".nsi.template", Suffix: ".nsi", ComStr: "NSISSCRIPTCOMSTR"},
			"Installer":  {Name: "Installer", Action: "$MAKENSIS $SOURCE", SrcSuffix: ".nsi", Suffix: ".exe", SrcBuilder: "NSISScript", ComStr: "MAKENSISCOMSTR"},
		},
		Vars: map[string]any{
			"MAKENSIS":         "/usr/bin/makensis",
			"NSISSCRIPTCOMSTR": "Generating NSIS script ...",
			"MAKENSISCOMSTR":   "Generating installer ...",
		},
	}
}

func TestMakeInstaller(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"game.exe", filepath.Join("data", "assets.pak")} {
		if err := os.MkdirAll(filepath.Join(dir, filepath.Dir(f)), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	x := probetest.New("makensis")
	var out bytes.Buffer
	output := filepath.Join(dir, "game.nsi")
	got, err := makeInstaller(context.Background(), installerJob{
		Config: &config.Installer{
			Name:      "game",
			Version:   "1.0",
			Files:     []string{"game.exe", "data/*.pak"},
			Shortcuts: []string{"game.exe"},
		},
		State:  nsisState(),
		Dir:    dir,
		Work:   t.TempDir(),
		Output: output,
		Build:  true,
		Exec:   x,
		Out:    &out,
	})
	if err != nil {
		t.Fatalf("makeInstaller: %v", err)
	}
	if got != output {
		t.Errorf("script = %q, want %q", got, output)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	script := string(data)
	for _, want := range []string{
		"File /r /x .* game.exe",
		"File /r /x .* data/assets.pak",
		`Delete $INSTDIR\assets.pak`,
		`RMDir /r $INSTDIR\game.exe`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script lacks %q", want)
		}
	}

	calls := x.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %v", calls)
	}
	if diff := cmp.Diff([]string{output}, calls[0].Args); diff != "" {
		t.Errorf("makensis args (-want +got):\n%s", diff)
	}
	if want := "Generating NSIS script ...\nGenerating installer ...\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestMakeInstallerWithoutNSIS(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "game.exe"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	job := installerJob{
		Config: &config.Installer{Name: "game", Files: []string{"game.exe"}, Shortcuts: []string{"game.exe"}},
		State:  &session.State{Capabilities: map[string]string{}},
		Dir:    dir,
		Work:   t.TempDir(),
		Output: filepath.Join(dir, "game.nsi"),
		Exec:   probetest.New(),
		Out:    &bytes.Buffer{},
	}
	if _, err := makeInstaller(context.Background(), job); err != nil {
		t.Fatalf("render without nsis: %v", err)
	}
	job.Build = true
	if _, err := makeInstaller(context.Background(), job); err == nil || !strings.Contains(err.Error(), "nsis") {
		t.Errorf("build without nsis: err = %v", err)
	}
}
