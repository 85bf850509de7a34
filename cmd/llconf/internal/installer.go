package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goplus/llconf/internal/config"
	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/installer"
	"github.com/goplus/llconf/internal/probe"
	"github.com/goplus/llconf/internal/session"
)

var (
	installerBuild  bool
	installerOutput string
)

var installerCmd = &cobra.Command{
	Use:   "installer",
	Short: "Generate the NSIS installer script",
	Long: `Installer renders the installer script described by the installer section
of the configuration file. With --build the script is also compiled with
makensis, which requires a successful configure run with the nsis feature.`,
	Args: cobra.NoArgs,
	RunE: runInstaller,
}

func init() {
	installerCmd.Flags().BoolVarP(&installerBuild, "build", "b", false, "Compile the script with makensis")
	installerCmd.Flags().StringVarP(&installerOutput, "output", "o", "", "Script path (default <name>.nsi)")
	rootCmd.AddCommand(installerCmd)
}

func runInstaller(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Installer == nil {
		return fmt.Errorf("%s has no installer section", configPath)
	}
	st, err := session.LoadState(cfg.WorkDir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no configure state in %s, run llconf configure first", cfg.WorkDir)
	}
	if err != nil {
		return err
	}
	_, err = makeInstaller(context.Background(), installerJob{
		Config: cfg.Installer,
		State:  st,
		Dir:    ".",
		Work:   cfg.WorkDir,
		Output: installerOutput,
		Build:  installerBuild,
		Exec:   probe.OS,
		Out:    cmd.OutOrStdout(),
	})
	return err
}

type installerJob struct {
	Config *config.Installer
	State  *session.State
	// Dir is the project root manifest patterns are relative to.
	Dir string
	// Work receives the default template when the project has none.
	Work   string
	Output string
	Build  bool
	Exec   probe.Executor
	Out    io.Writer
}

// makeInstaller renders the installer script and, when asked, compiles
// it. It returns the path of the script.
func makeInstaller(ctx context.Context, job installerJob) (string, error) {
	ic := job.Config
	files, err := installer.ExpandManifest(os.DirFS(job.Dir), ic.Files)
	if err != nil {
		return "", err
	}
	e := job.State.Env()
	e.Set(installer.NameKey, ic.Name)
	e.Set(installer.VersionKey, ic.Version)
	e.Set(installer.FilesKey, files)
	e.Set(installer.ShortcutsKey, ic.Shortcuts)

	tmpl := ic.Template
	if tmpl == "" {
		tmpl = filepath.Join(job.Work, ic.Name+".nsi.template")
		if err := os.WriteFile(tmpl, []byte(installer.DefaultTemplate()), 0o644); err != nil {
			return "", err
		}
	}
	script, ok := feature.Lookup(e, "NSISScript")
	if !ok {
		script = feature.Builder{Name: "NSISScript", Generator: installer.GeneratorName, Suffix: ".nsi"}
	}
	output := job.Output
	if output == "" {
		output = ic.Output
	}
	if output == "" {
		output = ic.Name + ".nsi"
	}
	if msg := script.Message(e, output, tmpl); msg != "" {
		fmt.Fprintln(job.Out, msg)
	}
	if err := feature.Generate(e, script, output, tmpl); err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", output, err)
	}
	if !job.Build {
		return output, nil
	}

	inst, ok := feature.Lookup(e, "Installer")
	if !ok {
		return output, errors.New("makensis is not configured, run llconf configure with the nsis feature")
	}
	target := inst.Target(e, output)
	argv := inst.Command(e, target, output)
	if len(argv) == 0 {
		return output, fmt.Errorf("builder %s has no command", inst.Name)
	}
	if msg := inst.Message(e, target, output); msg != "" {
		fmt.Fprintln(job.Out, msg)
	} else {
		fmt.Fprintln(job.Out, probe.Command{Path: argv[0], Args: argv[1:]})
	}
	out, err := job.Exec.Run(ctx, probe.Command{Path: argv[0], Args: argv[1:]})
	if err != nil {
		job.Out.Write(out)
		return output, fmt.Errorf("makensis failed: %w", err)
	}
	return output, nil
}
