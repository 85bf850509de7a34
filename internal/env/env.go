// Package env implements the mutable configuration store shared by the
// probes of one configure session, plus snapshots used to roll back
// speculative changes.
package env

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
)

// WorkDir returns the default directory for configure scratch files.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".llconf"), nil
}

// Env maps configuration keys to values.
//
// A value is a string, a []string, a bool, a nested map[string]any or any
// other immutable value such as a builder template. Lists and maps are
// copied on the way in and on the way out so that callers never alias the
// store.
type Env struct {
	vars map[string]any
}

// New returns an empty Env.
func New() *Env {
	return &Env{vars: make(map[string]any)}
}

// FromMap returns an Env seeded with a copy of vars.
func FromMap(vars map[string]any) *Env {
	e := New()
	for k, v := range vars {
		e.Set(k, v)
	}
	return e
}

// Get returns a copy of the value stored under key.
func (e *Env) Get(key string) (any, bool) {
	v, ok := e.vars[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Has reports whether key is set.
func (e *Env) Has(key string) bool {
	_, ok := e.vars[key]
	return ok
}

// String returns the scalar value of key. Lists are joined with a space.
func (e *Env) String(key string) string {
	return toString(e.vars[key])
}

// Bool returns the boolean value of key. Strings "1", "true", "yes" and
// "on" count as true.
func (e *Env) Bool(key string) bool {
	switch v := e.vars[key].(type) {
	case bool:
		return v
	case string:
		switch v {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}

// List returns a copy of the list stored under key. A scalar string is
// returned as a one element list.
func (e *Env) List(key string) []string {
	switch v := e.vars[key].(type) {
	case []string:
		return slices.Clone(v)
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Map returns a copy of the nested map stored under key.
func (e *Env) Map(key string) map[string]any {
	m, _ := e.vars[key].(map[string]any)
	if m == nil {
		return nil
	}
	return cloneMap(m)
}

// Set stores a copy of v under key.
func (e *Env) Set(key string, v any) {
	e.vars[key] = cloneValue(v)
}

// SetDefault stores v under key unless key is already set.
func (e *Env) SetDefault(key string, v any) {
	if _, ok := e.vars[key]; !ok {
		e.Set(key, v)
	}
}

// Delete removes key.
func (e *Env) Delete(key string) {
	delete(e.vars, key)
}

// Append adds vals to the end of the list stored under key.
func (e *Env) Append(key string, vals ...string) {
	e.vars[key] = append(e.List(key), vals...)
}

// AppendUnique adds the values of vals that the list does not hold yet.
func (e *Env) AppendUnique(key string, vals ...string) {
	list := e.List(key)
	for _, v := range vals {
		if !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	e.vars[key] = list
}

// PrependUnique puts the values of vals that the list does not hold yet in
// front of it, keeping their order.
func (e *Env) PrependUnique(key string, vals ...string) {
	list := e.List(key)
	var head []string
	for _, v := range vals {
		if !slices.Contains(list, v) && !slices.Contains(head, v) {
			head = append(head, v)
		}
	}
	e.vars[key] = append(head, list...)
}

// Keys returns the set keys in sorted order.
func (e *Env) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of e.
func (e *Env) Clone() *Env {
	return &Env{vars: cloneMap(e.vars)}
}

// Dump returns a deep copy of every key and value.
func (e *Env) Dump() map[string]any {
	return cloneMap(e.vars)
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case []string:
		if v == nil {
			return []string(nil)
		}
		return slices.Clone(v)
	case map[string]any:
		return cloneMap(v)
	}
	return v
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range maps.All(m) {
		out[k] = cloneValue(v)
	}
	return out
}
