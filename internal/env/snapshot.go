package env

import (
	"reflect"
	"sort"
)

// Snapshot holds the values a set of keys had when it was captured.
// A Snapshot is never modified after Capture.
type Snapshot struct {
	entries map[string]entry
}

type entry struct {
	value   any
	present bool
}

// Capture copies the current value, or the absence, of each key.
func Capture(e *Env, keys ...string) *Snapshot {
	s := &Snapshot{entries: make(map[string]entry, len(keys))}
	for _, k := range keys {
		v, ok := e.vars[k]
		s.entries[k] = entry{value: cloneValue(v), present: ok}
	}
	return s
}

// Restore writes the captured values back into e and removes the keys that
// were absent at capture time. Keys outside the snapshot are left alone.
// Restore may be applied more than once.
func (s *Snapshot) Restore(e *Env) {
	for k, ent := range s.entries {
		if !ent.present {
			delete(e.vars, k)
			continue
		}
		e.vars[k] = cloneValue(ent.value)
	}
}

// Keys returns the captured keys in sorted order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether e holds exactly the captured state on every
// captured key.
func (s *Snapshot) Equal(e *Env) bool {
	for k, ent := range s.entries {
		v, ok := e.vars[k]
		if ok != ent.present {
			return false
		}
		if ok && !reflect.DeepEqual(v, ent.value) {
			return false
		}
	}
	return true
}
