// Package session drives one configure run: it prepares the environment,
// retargets the toolchain, runs the requested probes in order and records
// what they found.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/qiniu/x/log"

	"github.com/goplus/llconf/internal/env"
	"github.com/goplus/llconf/internal/probe"
	"github.com/goplus/llconf/internal/toolchain"
)

// LogFile is the name of the configure log inside the work directory.
const LogFile = "config.log"

// comStrings are the short build messages used unless the session is
// verbose.
var comStrings = map[string]string{
	"CCCOMSTR":         "Compiling C source ${SOURCE} ...",
	"CXXCOMSTR":        "Compiling C++ source ${SOURCE} ...",
	"ARCOMSTR":         "Creating static library ${TARGET} ...",
	"RANLIBCOMSTR":     "Indexing ${TARGET} ...",
	"LINKCOMSTR":       "Linking binary ${TARGET} ...",
	"INSTALLSTR":       "Installing $SOURCE as $TARGET ...",
	"QT4_MOCCOMSTR":    "Moccing ${SOURCE} ...",
	"QT4_UICCOMSTR":    "Compiling user interface: ${SOURCE} ...",
	"NSISSCRIPTCOMSTR": "Generating NSIS script ...",
	"MAKENSISCOMSTR":   "Generating installer ...",
}

// Options configures a Session.
type Options struct {
	// Host is the target triple. Empty means a native build.
	Host    string
	Verbose bool
	// WorkDir receives the configure log, trial files and the saved state.
	WorkDir string
	// Vars seed the environment before defaults are applied.
	Vars map[string]any

	Registry *probe.Registry
	// Exec runs external tools. probe.OS is used when nil.
	Exec probe.Executor
	// Out receives progress lines. Nothing is printed when nil.
	Out io.Writer
}

// Session is a single configure run.
type Session struct {
	mu      sync.Mutex
	id      string
	started time.Time
	env     *env.Env
	spec    toolchain.Spec
	reg     *probe.Registry
	rt      *probe.Runtime
	workDir string
	logFile *os.File
}

// New prepares a session: it creates the work directory, opens the
// configure log, seeds defaults and retargets the toolchain for
// opts.Host.
func New(opts Options) (*Session, error) {
	if opts.Registry == nil {
		return nil, errors.New("session: no probe registry")
	}
	workDir := opts.WorkDir
	if workDir == "" {
		dir, err := env.WorkDir()
		if err != nil {
			return nil, err
		}
		workDir = dir
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}

	s := &Session{
		id:      ulid.Make().String(),
		started: time.Now(),
		env:     env.FromMap(opts.Vars),
		reg:     opts.Registry,
		workDir: workDir,
	}
	f, err := os.OpenFile(filepath.Join(workDir, LogFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open configure log: %w", err)
	}
	s.logFile = f
	fmt.Fprintf(f, "# session %s, %s\n", s.id, s.started.Format(time.RFC3339))

	if err := s.prepare(opts); err != nil {
		f.Close()
		return nil, err
	}
	s.rt = &probe.Runtime{
		Env:  s.env,
		Exec: opts.Exec,
		Out:  opts.Out,
		Log:  f,
		Dir:  filepath.Join(workDir, "trials"),
	}
	log.Debugf("session %s: work directory %s", s.id, workDir)
	return s, nil
}

func (s *Session) prepare(opts Options) error {
	native := toolchain.NativePlatform()
	if p, err := toolchain.ParsePlatform(s.env.String("PLATFORM")); err == nil && s.env.Has("PLATFORM") {
		native = p
	}
	toolchain.Defaults(s.env, native)
	if !opts.Verbose {
		for k, v := range comStrings {
			s.env.SetDefault(k, v)
		}
	}
	spec, err := toolchain.Retarget(s.env, opts.Host)
	if err != nil {
		return fmt.Errorf("retarget toolchain: %w", err)
	}
	s.spec = spec
	if spec.Cross() {
		fmt.Fprintf(s.logFile, "# host %s (%s), build %s\n", spec.Host, spec.Platform, toolchain.BuildTriple())
	}
	return nil
}

// ID returns the unique id of the session.
func (s *Session) ID() string {
	return s.id
}

// Env returns the session environment.
func (s *Session) Env() *env.Env {
	return s.env
}

// Toolchain returns the toolchain selected when the session started.
func (s *Session) Toolchain() toolchain.Spec {
	return s.spec.Clone()
}

// WorkDir returns the work directory of the session.
func (s *Session) WorkDir() string {
	return s.workDir
}

// Configure runs the probes reqs name, in order. A failed probe does not
// stop the run; failed mandatory features are collected in the report. The
// returned error is non-nil only for requests naming no known probe.
func (s *Session) Configure(ctx context.Context, reqs []probe.Request) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, req := range reqs {
		if _, ok := s.reg.Lookup(req.Name); !ok {
			return nil, &probe.Error{Probe: req.Name, Op: "lookup", Err: probe.ErrUnknownProbe}
		}
	}
	rep := &Report{}
	for _, req := range reqs {
		res, err := s.reg.Run(ctx, s.rt, req)
		if err != nil {
			return rep, err
		}
		rep.Results = append(rep.Results, res)
		if !res.Succeeded && req.Mandatory {
			rep.Failed = append(rep.Failed, Failure{Request: req.String(), Message: res.Message})
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// Save writes the state of the session to the work directory.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SaveState(s.workDir, s.state())
}

// Close closes the configure log.
func (s *Session) Close() error {
	return s.logFile.Close()
}

// Report summarizes a Configure run.
type Report struct {
	Results []probe.Result
	// Failed lists the mandatory requests whose probe failed.
	Failed []Failure
}

// Failure is a mandatory feature that was not found.
type Failure struct {
	Request string
	Message string
}

// OK reports whether every mandatory feature was found.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// ExitCode returns the process exit status for the run.
func (r *Report) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// Summary describes the failed mandatory features. It is empty when the
// run succeeded.
func (r *Report) Summary() string {
	if r.OK() {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d required feature(s) not found:\n", len(r.Failed))
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "  %s: %s\n", f.Request, f.Message)
	}
	return b.String()
}
