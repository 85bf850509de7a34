// Package feature records the build capabilities unlocked by successful
// probes, so that later build-graph construction can ask whether a
// capability is available and how to run its build step without probing
// again.
package feature

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goplus/llconf/internal/env"
)

// Environment keys owned by this package.
const (
	// CapabilitiesKey maps capability name to the name of its owner probe.
	CapabilitiesKey = "CAPABILITIES"
	// BuildersKey maps builder name to its Builder template.
	BuildersKey = "BUILDERS"
)

// ErrInvalid is returned by Commit for a malformed or conflicting
// registration set. Nothing is written to the environment in that case.
var ErrInvalid = errors.New("invalid capability registration")

// Registration is a named unit of build configuration made available when
// its owner probe succeeds.
type Registration struct {
	// Name identifies the capability. For a builder it is also the
	// builder name.
	Name string
	// Append lists values to add to list keys. Values already present are
	// not added twice.
	Append map[string][]string
	// Set overwrites scalar keys.
	Set map[string]string
	// Builder is an optional build-step template.
	Builder *Builder
}

// Commit validates regs and then merges all of them into e on behalf of
// owner. Either every registration is applied or none is.
func Commit(e *env.Env, owner string, regs []Registration) error {
	if err := validate(e, owner, regs); err != nil {
		return err
	}
	caps := e.Map(CapabilitiesKey)
	if caps == nil {
		caps = make(map[string]any)
	}
	builders := e.Map(BuildersKey)
	if builders == nil {
		builders = make(map[string]any)
	}
	for _, r := range regs {
		for _, k := range sortedKeys(r.Append) {
			e.AppendUnique(k, r.Append[k]...)
		}
		for _, k := range sortedKeys(r.Set) {
			e.Set(k, r.Set[k])
		}
		if r.Builder != nil {
			b := *r.Builder
			b.Name = r.Name
			builders[r.Name] = b
		}
		caps[r.Name] = owner
	}
	e.Set(CapabilitiesKey, caps)
	if len(builders) > 0 {
		e.Set(BuildersKey, builders)
	}
	return nil
}

func validate(e *env.Env, owner string, regs []Registration) error {
	if owner == "" {
		return fmt.Errorf("%w: empty owner", ErrInvalid)
	}
	seen := make(map[string]bool, len(regs))
	for _, r := range regs {
		if r.Name == "" {
			return fmt.Errorf("%w: capability without a name", ErrInvalid)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: capability %s registered twice", ErrInvalid, r.Name)
		}
		seen[r.Name] = true
		if prev, ok := Owner(e, r.Name); ok && prev != owner {
			return fmt.Errorf("%w: capability %s already provided by %s", ErrInvalid, r.Name, prev)
		}
		for k := range r.Append {
			if err := checkKey(k); err != nil {
				return err
			}
		}
		for k := range r.Set {
			if err := checkKey(k); err != nil {
				return err
			}
		}
		if r.Builder != nil && r.Builder.Action == "" && r.Builder.Generator == "" {
			return fmt.Errorf("%w: builder %s has no action", ErrInvalid, r.Name)
		}
	}
	return nil
}

func checkKey(k string) error {
	switch k {
	case "", CapabilitiesKey, BuildersKey:
		return fmt.Errorf("%w: key %q cannot be registered directly", ErrInvalid, k)
	}
	return nil
}

// Available reports whether capability name has been committed.
func Available(e *env.Env, name string) bool {
	_, ok := Owner(e, name)
	return ok
}

// Owner returns the probe that committed capability name.
func Owner(e *env.Env, name string) (string, bool) {
	v, ok := e.Map(CapabilitiesKey)[name]
	if !ok {
		return "", false
	}
	owner, ok := v.(string)
	return owner, ok
}

// Lookup returns the builder template registered under name.
func Lookup(e *env.Env, name string) (Builder, bool) {
	b, ok := e.Map(BuildersKey)[name].(Builder)
	return b, ok
}

// Names returns every committed capability in sorted order.
func Names(e *env.Env) []string {
	return sortedKeys(e.Map(CapabilitiesKey))
}

// Owned returns the capabilities committed by owner in sorted order.
func Owned(e *env.Env, owner string) []string {
	var names []string
	for name, v := range e.Map(CapabilitiesKey) {
		if v == owner {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Withdraw removes the capabilities and builders committed by owner and
// returns their names. Flag values appended by the registrations are left
// in place since other capabilities may rely on the same values.
func Withdraw(e *env.Env, owner string) []string {
	names := Owned(e, owner)
	if len(names) == 0 {
		return nil
	}
	caps := e.Map(CapabilitiesKey)
	builders := e.Map(BuildersKey)
	for _, name := range names {
		delete(caps, name)
		delete(builders, name)
	}
	e.Set(CapabilitiesKey, caps)
	if builders != nil {
		e.Set(BuildersKey, builders)
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
