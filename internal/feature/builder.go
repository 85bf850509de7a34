package feature

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goplus/llconf/internal/env"
	"github.com/goplus/llconf/internal/pkgconfig"
)

// Builder is a build-step template: how to name the output of a source and
// which command produces it. Builders are plain values so they can live in
// the environment and be snapshotted like any other value.
type Builder struct {
	Name string
	// Action is a command template expanded against the environment with
	// $TARGET and $SOURCE bound, e.g. "$MAKENSIS $SOURCE".
	Action string
	// Generator names an in-process action registered with
	// RegisterGenerator. It is used when Action is empty.
	Generator string
	// Prefix and Suffix build the output name; both may refer to
	// environment keys.
	Prefix string
	Suffix string
	// SrcSuffix is the expected suffix of sources, stripped when naming
	// the output.
	SrcSuffix string
	// SrcBuilder names the builder that produces this builder's sources.
	SrcBuilder string
	// ComStr is the key holding the short message printed instead of the
	// command line.
	ComStr string
}

// Target returns the output path this builder produces for source.
func (b Builder) Target(e *env.Env, source string) string {
	dir, base := filepath.Split(source)
	var stem string
	if suffix := e.Subst(b.SrcSuffix, nil); suffix != "" && strings.HasSuffix(base, suffix) {
		stem = strings.TrimSuffix(base, suffix)
	} else {
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	name := e.Subst(b.Prefix, nil) + stem + e.Subst(b.Suffix, nil)
	return filepath.Join(dir, name)
}

// Command returns the argv of the builder's action for target and source.
// It returns nil for generator builders.
//
// The action is split into words before expansion, so a value holding a
// path with blanks stays one argument. A word that is only a reference to
// a list value expands to one argument per element, and a reference to a
// string that is itself a template, like $QT4_UICCOM, is split in turn.
func (b Builder) Command(e *env.Env, target, source string) []string {
	if b.Action == "" {
		return nil
	}
	return expandWords(e, b.Action, map[string]string{
		"TARGET": target,
		"SOURCE": source,
	}, 0)
}

// maxCommandDepth bounds nested command templates.
const maxCommandDepth = 8

func expandWords(e *env.Env, tmpl string, extra map[string]string, depth int) []string {
	var argv []string
	for _, word := range pkgconfig.Split(tmpl) {
		name, ok := bareRef(word)
		if !ok || depth >= maxCommandDepth {
			argv = append(argv, e.Subst(word, extra))
			continue
		}
		if v, bound := extra[name]; bound {
			argv = append(argv, v)
			continue
		}
		v, _ := e.Get(name)
		switch v := v.(type) {
		case []string:
			for _, s := range v {
				argv = append(argv, e.Subst(s, extra))
			}
		case string:
			if strings.Contains(v, "$") {
				argv = append(argv, expandWords(e, v, extra, depth+1)...)
			} else if v != "" {
				argv = append(argv, v)
			}
		default:
			if s := e.Subst(word, extra); s != "" {
				argv = append(argv, s)
			}
		}
	}
	return argv
}

// bareRef reports whether word is exactly $NAME or ${NAME}.
func bareRef(word string) (string, bool) {
	if len(word) < 2 || word[0] != '$' {
		return "", false
	}
	name := word[1:]
	if name[0] == '{' {
		if !strings.HasSuffix(name, "}") {
			return "", false
		}
		name = name[1 : len(name)-1]
	}
	if name == "" {
		return "", false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && (i == 0 || !('0' <= c && c <= '9')) {
			return "", false
		}
	}
	return name, true
}

// Message returns the short progress message for target and source, or
// the empty string when the builder has none configured.
func (b Builder) Message(e *env.Env, target, source string) string {
	if b.ComStr == "" {
		return ""
	}
	return e.Subst("$"+b.ComStr, map[string]string{
		"TARGET": target,
		"SOURCE": source,
	})
}

// GeneratorFunc is an in-process builder action.
type GeneratorFunc func(e *env.Env, target, source string) error

var (
	generatorsMu sync.RWMutex
	generators   = make(map[string]GeneratorFunc)
)

// RegisterGenerator makes an in-process action available to builders
// under name. It panics if name is registered twice.
func RegisterGenerator(name string, fn GeneratorFunc) {
	generatorsMu.Lock()
	defer generatorsMu.Unlock()
	if fn == nil {
		panic("feature: RegisterGenerator fn is nil")
	}
	if _, dup := generators[name]; dup {
		panic("feature: RegisterGenerator called twice for " + name)
	}
	generators[name] = fn
}

// Generators returns the registered generator names in sorted order.
func Generators() []string {
	generatorsMu.RLock()
	defer generatorsMu.RUnlock()
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate runs the in-process action of b.
func Generate(e *env.Env, b Builder, target, source string) error {
	generatorsMu.RLock()
	fn, ok := generators[b.Generator]
	generatorsMu.RUnlock()
	if !ok {
		return fmt.Errorf("builder %s: unknown generator %q", b.Name, b.Generator)
	}
	return fn(e, target, source)
}
