// Package config loads the llconf.yaml file of a project.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "llconf.yaml"

//go:embed schema.json
var schemaJSON string

// Config is the content of a configuration file.
type Config struct {
	// Host is the target triple, empty for a native build.
	Host    string `yaml:"host,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
	// WorkDir holds config.log, config.json and trial files.
	WorkDir string `yaml:"workdir,omitempty"`
	// Env seeds the build environment. Values are strings or lists of
	// strings.
	Env       map[string]any `yaml:"env,omitempty"`
	Features  Features       `yaml:"features,omitempty"`
	Installer *Installer     `yaml:"installer,omitempty"`
	Dist      *Dist          `yaml:"dist,omitempty"`
}

// Features lists feature requests in their textual form.
type Features struct {
	Require  []string `yaml:"require,omitempty"`
	Optional []string `yaml:"optional,omitempty"`
}

// Installer configures installer script generation.
type Installer struct {
	Name      string   `yaml:"name"`
	Version   string   `yaml:"version,omitempty"`
	Template  string   `yaml:"template,omitempty"`
	Output    string   `yaml:"output,omitempty"`
	Files     []string `yaml:"files,omitempty"`
	Shortcuts []string `yaml:"shortcuts,omitempty"`
}

// Dist configures snapshot packaging.
type Dist struct {
	Name    string   `yaml:"name"`
	OutDir  string   `yaml:"outdir,omitempty"`
	Format  string   `yaml:"format,omitempty"`
	Include []string `yaml:"include,omitempty"`
}

// DefaultWorkDir is the work directory used when none is configured.
const DefaultWorkDir = ".llconf"

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{WorkDir: DefaultWorkDir}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns Default when it does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes and validates a YAML document.
func Parse(b []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return Default(), nil
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := decodeYAMLStrict(b, cfg); err != nil {
		return nil, err
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = DefaultWorkDir
	}
	return cfg, nil
}

func decodeYAMLStrict(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("yaml: multiple documents are not allowed")
		}
		return err
	}
	return nil
}

var schema = jsonschema.MustCompileString("schema.json", schemaJSON)

func validate(doc any) error {
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid configuration: %s", leafMessage(verr))
		}
		return err
	}
	return nil
}

// leafMessage returns the most specific cause of a validation error.
func leafMessage(e *jsonschema.ValidationError) string {
	for len(e.Causes) > 0 {
		e = e.Causes[0]
	}
	loc := e.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + e.Message
}

// EnvVars returns Env with every value converted to a string or a list of
// strings.
func (c *Config) EnvVars() map[string]any {
	vars := make(map[string]any, len(c.Env))
	for k, v := range c.Env {
		switch v := v.(type) {
		case []any:
			list := make([]string, 0, len(v))
			for _, item := range v {
				list = append(list, fmt.Sprint(item))
			}
			vars[k] = list
		case []string:
			vars[k] = v
		case bool:
			vars[k] = v
		case nil:
			vars[k] = ""
		default:
			vars[k] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return vars
}
