package installer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goplus/llconf/internal/env"
	"github.com/goplus/llconf/internal/feature"
)

// Environment keys read by the script generator.
const (
	NameKey      = "INSTALLER_NAME"
	VersionKey   = "INSTALLER_VERSION"
	FilesKey     = "INSTALLER_FILES"
	ShortcutsKey = "INSTALLER_SHORTCUTS"
)

func init() {
	feature.RegisterGenerator(GeneratorName, generate)
}

// FromEnv builds the Script described by the INSTALLER_* keys of e.
func FromEnv(e *env.Env) (*Script, error) {
	s := &Script{
		Name:    e.String(NameKey),
		Version: e.String(VersionKey),
		Files:   e.List(FilesKey),
	}
	if s.Name == "" {
		return nil, fmt.Errorf("%s is not set", NameKey)
	}
	shortcuts := e.List(ShortcutsKey)
	if len(shortcuts) == 0 {
		return nil, fmt.Errorf("%s is not set", ShortcutsKey)
	}
	s.Executable = shortcuts[0]
	return s, nil
}

// generate renders the template file source into target.
func generate(e *env.Env, target, source string) error {
	s, err := FromEnv(e)
	if err != nil {
		return err
	}
	tmpl, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.Render(&buf, string(tmpl)); err != nil {
		return err
	}
	return os.WriteFile(target, buf.Bytes(), 0o644)
}
