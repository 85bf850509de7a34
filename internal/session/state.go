package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goplus/llconf/internal/env"
	"github.com/goplus/llconf/internal/feature"
)

// Work directory layout:
//
//	workDir/
//	  config.log    # trial commands and their output
//	  config.json   # State of the last successful configure
//	  trials/       # scratch files of trial programs
const StateFile = "config.json"

// State is what a configure run leaves behind for later commands.
type State struct {
	Session  string    `json:"session"`
	Time     time.Time `json:"time"`
	Host     string    `json:"host,omitempty"`
	Platform string    `json:"platform"`
	// Capabilities maps each available capability to its owner probe.
	Capabilities map[string]string          `json:"capabilities"`
	Builders     map[string]feature.Builder `json:"builders,omitempty"`
	Vars         map[string]any             `json:"vars"`
}

func (s *Session) state() *State {
	st := &State{
		Session:      s.id,
		Time:         s.started,
		Host:         s.spec.Host,
		Platform:     s.env.String("PLATFORM"),
		Capabilities: make(map[string]string),
		Builders:     make(map[string]feature.Builder),
		Vars:         s.env.Dump(),
	}
	for _, name := range feature.Names(s.env) {
		owner, _ := feature.Owner(s.env, name)
		st.Capabilities[name] = owner
		if b, ok := feature.Lookup(s.env, name); ok {
			st.Builders[name] = b
		}
	}
	delete(st.Vars, feature.CapabilitiesKey)
	delete(st.Vars, feature.BuildersKey)
	return st
}

// Available reports whether capability name was found.
func (st *State) Available(name string) bool {
	_, ok := st.Capabilities[name]
	return ok
}

// Names returns the available capabilities in sorted order.
func (st *State) Names() []string {
	names := make([]string, 0, len(st.Capabilities))
	for name := range st.Capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Env rebuilds the environment the state was saved from.
func (st *State) Env() *env.Env {
	e := env.New()
	for k, v := range st.Vars {
		e.Set(k, fromJSON(v))
	}
	caps := make(map[string]any, len(st.Capabilities))
	for name, owner := range st.Capabilities {
		caps[name] = owner
	}
	e.Set(feature.CapabilitiesKey, caps)
	if len(st.Builders) > 0 {
		builders := make(map[string]any, len(st.Builders))
		for name, b := range st.Builders {
			builders[name] = b
		}
		e.Set(feature.BuildersKey, builders)
	}
	return e
}

// fromJSON turns decoded JSON arrays back into string lists.
func fromJSON(v any) any {
	switch v := v.(type) {
	case []any:
		list := make([]string, 0, len(v))
		for _, x := range v {
			list = append(list, fmt.Sprint(x))
		}
		return list
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, x := range v {
			m[k] = fromJSON(x)
		}
		return m
	}
	return v
}

// LoadState reads the state saved in workDir.
func LoadState(workDir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(workDir, StateFile))
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%s: %w", StateFile, err)
	}
	return &st, nil
}

// SaveState writes st to workDir.
func SaveState(workDir string, st *State) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workDir, StateFile), data, 0o644)
}
