// Package installer renders NSIS installer scripts from a template and a
// file manifest.
package installer

import (
	_ "embed"
	"fmt"
	"io"
	"path"
	"strings"
	"text/template"
)

// GeneratorName is the name the NSIS script generator is registered under
// for builders.
const GeneratorName = "nsis-script"

//go:embed default.nsi.template
var defaultTemplate string

// DefaultTemplate returns the template used when a project has none.
func DefaultTemplate() string {
	return defaultTemplate
}

// Script describes one installer.
type Script struct {
	Name    string
	Version string
	// Executable is the program the start-menu shortcut points to.
	Executable string
	// Files is the manifest, in install order.
	Files []string
}

// base returns the last element of a manifest entry, accepting both slash
// styles.
func base(file string) string {
	return path.Base(strings.ReplaceAll(file, `\`, "/"))
}

// InstallDirectives returns one File directive per manifest entry.
func (s *Script) InstallDirectives() []string {
	out := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		out = append(out, "File /r /x .* "+f)
	}
	return out
}

// UninstallDirectives returns one Delete directive per manifest entry
// followed by one RMDir directive per manifest entry, both in manifest
// order.
func (s *Script) UninstallDirectives() []string {
	out := make([]string, 0, 2*len(s.Files))
	for _, f := range s.Files {
		out = append(out, `Delete $INSTDIR\`+base(f))
	}
	for _, f := range s.Files {
		out = append(out, `RMDir /r $INSTDIR\`+base(f))
	}
	return out
}

// templateData is what a script template sees.
type templateData struct {
	Name        string
	Version     string
	Executable  string
	Files       string
	UninstFiles string
}

// Render executes the text/template tmpl for s and writes the script to w.
// The template sees .Name, .Version, .Executable, .Files and .UninstFiles,
// the last two being the directive lists joined by newlines.
func (s *Script) Render(w io.Writer, tmpl string) error {
	t, err := template.New("installer").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse installer template: %w", err)
	}
	data := templateData{
		Name:        s.Name,
		Version:     s.Version,
		Executable:  base(s.Executable),
		Files:       strings.Join(s.InstallDirectives(), "\n"),
		UninstFiles: strings.Join(s.UninstallDirectives(), "\n"),
	}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("render installer %s: %w", s.Name, err)
	}
	return nil
}
