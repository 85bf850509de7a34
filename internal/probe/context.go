package probe

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/qiniu/x/log"
	"github.com/zeebo/blake3"

	"github.com/goplus/llconf/internal/env"
	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/pkgconfig"
	"github.com/goplus/llconf/internal/toolchain"
	"github.com/goplus/llconf/pkgs/version"
)

// TrialKeys lists the environment keys read when building a trial
// program.
var TrialKeys = []string{
	"CC", "CXX", "CCFLAGS", "CFLAGS", "CXXFLAGS", "CPPDEFINES", "CPPPATH",
	"LINKFLAGS", "LIBPATH", "LIBS", "FRAMEWORKS",
}

// Context is the handle a probe works through while it runs. It is valid
// only for the duration of Probe.Run.
type Context struct {
	ctx  context.Context
	name string
	req  Request
	env  *env.Env
	exec Executor
	log  io.Writer
	dir  string
	snap *env.Snapshot

	what   string
	staged []feature.Registration
}

// Context returns the context.Context of the run.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Env returns the shared environment. Probes may only change the keys
// they declare.
func (c *Context) Env() *env.Env {
	return c.env
}

// Name returns the name the probe is registered under.
func (c *Context) Name() string {
	return c.name
}

// Request returns the request being served.
func (c *Context) Request() Request {
	return c.req
}

// Args returns the arguments of the request.
func (c *Context) Args() []string {
	return c.req.Args
}

// Version returns the requested minimum version, or "".
func (c *Context) Version() string {
	return c.req.Version
}

// Platform returns the platform the environment targets.
func (c *Context) Platform() toolchain.Platform {
	p, err := toolchain.ParsePlatform(c.env.String("PLATFORM"))
	if err != nil {
		return toolchain.NativePlatform()
	}
	return p
}

// Message sets the human-readable name printed in the result line, as in
// "Checking for OpenGL... yes".
func (c *Context) Message(what string) {
	c.what = what
}

// Logf writes a line to the configure log.
func (c *Context) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Debugf("%s: %s", c.name, msg)
	if c.log != nil {
		fmt.Fprintf(c.log, "%s: %s\n", c.name, msg)
	}
}

// Register stages capabilities to commit if the probe succeeds.
func (c *Context) Register(regs ...feature.Registration) {
	c.staged = append(c.staged, regs...)
}

// Rollback restores the declared keys to their value before the probe
// started and drops the staged capabilities. Probes call it between
// attempts; the registry calls it when the probe fails.
func (c *Context) Rollback() {
	c.snap.Restore(c.env)
	c.staged = nil
}

func (c *Context) fail(op string, err error) error {
	return &Error{Probe: c.name, Op: op, Err: err}
}

// WhereIs locates tool, searching dirs and the TOOLPATH list of the
// environment before the PATH of the process.
func (c *Context) WhereIs(tool string, dirs ...string) (string, error) {
	tool = c.env.Subst(tool, nil)
	search := make([]string, 0, len(dirs))
	for _, d := range slices.Concat(dirs, c.env.List("TOOLPATH")) {
		search = append(search, c.env.Subst(d, nil))
	}
	path, err := c.exec.LookPath(tool, search)
	if err != nil {
		c.Logf("whereis %s: not found", tool)
		return "", c.fail("whereis "+tool, ErrToolNotFound)
	}
	c.Logf("whereis %s: %s", tool, path)
	return path, nil
}

// CheckVersion fails with ErrVersionTooLow when have is older than the
// requested minimum version.
func (c *Context) CheckVersion(have string) error {
	want := c.req.Version
	if want == "" || version.AtLeast(have, want) {
		return nil
	}
	return c.fail("version", fmt.Errorf("%w: have %s, want >= %s", ErrVersionTooLow, have, want))
}

// Output runs a tool and returns its trimmed output.
func (c *Context) Output(argv ...string) (string, error) {
	out, err := c.run("run "+opName(argv), argv)
	return strings.TrimSpace(string(out)), err
}

// TryAction runs a tool and reports whether it succeeded.
func (c *Context) TryAction(argv ...string) error {
	_, err := c.run("action "+opName(argv), argv)
	return err
}

// ParseConfig runs a pkg-config style tool, merges the flags it prints
// into the environment and returns them.
func (c *Context) ParseConfig(argv ...string) (pkgconfig.Flags, error) {
	out, err := c.run("config "+opName(argv), argv)
	if err != nil {
		return pkgconfig.Flags{}, err
	}
	flags := pkgconfig.Parse(string(out))
	pkgconfig.Merge(c.env, flags)
	return flags, nil
}

// TryCompile compiles src as a file with extension ext (".c" or ".cpp").
func (c *Context) TryCompile(src, ext string) error {
	file, cleanup, err := c.writeTrial(src, ext)
	if err != nil {
		return err
	}
	defer cleanup()

	obj := strings.TrimSuffix(file, ext) + objSuffix(c.env)
	defer os.Remove(obj)
	argv := c.compiler(ext)
	argv = append(argv, "-c", file, "-o", obj)
	_, err = c.run("compile", argv)
	return err
}

// TryLink compiles and links src as a program.
func (c *Context) TryLink(src, ext string) error {
	file, cleanup, err := c.writeTrial(src, ext)
	if err != nil {
		return err
	}
	defer cleanup()

	prog := strings.TrimSuffix(file, ext) + c.env.String("PROGSUFFIX")
	defer os.Remove(prog)
	argv := c.compiler(ext)
	argv = append(argv, file, "-o", prog)
	argv = append(argv, c.linkFlags()...)
	_, err = c.run("link", argv)
	return err
}

// TryBuild writes src with extension ext and runs builder b on it.
func (c *Context) TryBuild(b feature.Builder, src, ext string) error {
	file, cleanup, err := c.writeTrial(src, ext)
	if err != nil {
		return err
	}
	defer cleanup()

	target := b.Target(c.env, file)
	defer os.Remove(target)
	if b.Action == "" {
		if err := feature.Generate(c.env, b, target, file); err != nil {
			c.Logf("build %s: %v", b.Name, err)
			return c.fail("build "+b.Name, fmt.Errorf("%w: %v", ErrLinkFailed, err))
		}
		return nil
	}
	argv := b.Command(c.env, target, file)
	if len(argv) == 0 {
		return c.fail("build "+b.Name, fmt.Errorf("%w: empty command", ErrLinkFailed))
	}
	_, err = c.run("build "+b.Name, argv)
	return err
}

func (c *Context) run(op string, argv []string) ([]byte, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, c.fail(op, fmt.Errorf("%w: empty command", ErrToolNotFound))
	}
	cmd := Command{Path: argv[0], Args: argv[1:], Env: c.processEnv()}
	c.Logf("%s", cmd)
	out, err := c.exec.Run(c.ctx, cmd)
	if len(out) > 0 && c.log != nil {
		c.log.Write(out)
		if out[len(out)-1] != '\n' {
			io.WriteString(c.log, "\n")
		}
	}
	if err != nil {
		c.Logf("%s: %v", op, err)
		if errors.Is(err, ErrToolNotFound) {
			return out, c.fail(op, err)
		}
		return out, c.fail(op, fmt.Errorf("%w: %v", ErrLinkFailed, err))
	}
	return out, nil
}

// processEnv returns the string values of the ENV map of the environment.
func (c *Context) processEnv() map[string]string {
	m := c.env.Map("ENV")
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case string:
			out[k] = v
		case []string:
			out[k] = strings.Join(v, c.Platform().Conventions().PathSep)
		}
	}
	return out
}

func (c *Context) writeTrial(src, ext string) (string, func(), error) {
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, c.fail("trial", err)
	}
	sum := blake3.Sum256([]byte(c.name + "\x00" + src))
	file := filepath.Join(dir, "conftest_"+hex.EncodeToString(sum[:8])+ext)
	if err := os.WriteFile(file, []byte(src), 0o644); err != nil {
		return "", nil, c.fail("trial", err)
	}
	if c.log != nil {
		fmt.Fprintf(c.log, "%s: file %s:\n%s\n", c.name, filepath.Base(file), src)
	}
	return file, func() { os.Remove(file) }, nil
}

func opName(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return filepath.Base(argv[0])
}

func isCXX(ext string) bool {
	switch ext {
	case ".cpp", ".cc", ".cxx", ".C":
		return true
	}
	return false
}

func objSuffix(e *env.Env) string {
	if s := e.String("OBJSUFFIX"); s != "" {
		return s
	}
	return ".o"
}

// compiler returns the compiler command line for a source of kind ext,
// without the source and output arguments.
func (c *Context) compiler(ext string) []string {
	e := c.env
	tool, langFlags := "CC", "CFLAGS"
	if isCXX(ext) {
		tool, langFlags = "CXX", "CXXFLAGS"
	}
	// CC may carry a launcher or flags ("ccache gcc"); a single word is
	// kept as is so Windows paths keep their backslashes.
	cc := e.Subst(e.String(tool), nil)
	argv := []string{cc}
	if strings.ContainsAny(cc, " \t") {
		argv = pkgconfig.Split(cc)
	}
	for _, key := range []string{"CCFLAGS", langFlags} {
		for _, f := range e.List(key) {
			argv = append(argv, e.Subst(f, nil))
		}
	}
	for _, d := range e.List("CPPDEFINES") {
		argv = append(argv, "-D"+e.Subst(d, nil))
	}
	for _, p := range e.List("CPPPATH") {
		argv = append(argv, "-I"+e.Subst(p, nil))
	}
	return argv
}

func (c *Context) linkFlags() []string {
	e := c.env
	var argv []string
	for _, f := range e.List("LINKFLAGS") {
		argv = append(argv, e.Subst(f, nil))
	}
	for _, p := range e.List("LIBPATH") {
		argv = append(argv, "-L"+e.Subst(p, nil))
	}
	for _, l := range e.List("LIBS") {
		l = e.Subst(l, nil)
		if strings.ContainsAny(l, `/\`) {
			argv = append(argv, l)
		} else {
			argv = append(argv, "-l"+l)
		}
	}
	for _, f := range e.List("FRAMEWORKS") {
		argv = append(argv, "-framework", e.Subst(f, nil))
	}
	return argv
}
