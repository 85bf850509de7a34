package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/llconf/internal/probe"
	"github.com/goplus/llconf/internal/probe/checks"
	"github.com/goplus/llconf/internal/session"
)

var (
	configureHost     string
	configureRequire  []string
	configureOptional []string
	configureVerbose  bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Check for the requested features",
	Long: `Configure runs the probe of every requested feature and records what was
found in the work directory. Features are written name[:arg,arg][>=version],
for example graphics:gl,glu or sdl>=1.2.

The command fails when a required feature is missing. Missing optional
features are only reported.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&configureHost, "host", "", "Cross-compile for the given target triple")
	configureCmd.Flags().StringArrayVarP(&configureRequire, "require", "r", nil, "Require a feature (repeatable)")
	configureCmd.Flags().StringArrayVarP(&configureOptional, "optional", "o", nil, "Check for an optional feature (repeatable)")
	configureCmd.Flags().BoolVarP(&configureVerbose, "verbose", "v", false, "Show full build command lines")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	host := cfg.Host
	if cmd.Flags().Changed("host") {
		host = configureHost
	}
	reqs, err := parseRequests(
		append(cfg.Features.Require, configureRequire...),
		append(cfg.Features.Optional, configureOptional...),
	)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return errors.New("no features requested")
	}

	s, err := session.New(session.Options{
		Host:     host,
		Verbose:  cfg.Verbose || configureVerbose,
		WorkDir:  cfg.WorkDir,
		Vars:     cfg.EnvVars(),
		Registry: checks.NewRegistry(),
		Out:      cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	rep, err := s.Configure(context.Background(), reqs)
	if err != nil {
		return err
	}
	if err := s.Save(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	if !rep.OK() {
		fmt.Fprint(cmd.ErrOrStderr(), rep.Summary())
		return &exitError{code: rep.ExitCode()}
	}
	return nil
}

// parseRequests parses the required and optional feature lists. A feature
// named in both is required.
func parseRequests(require, optional []string) ([]probe.Request, error) {
	var reqs []probe.Request
	index := make(map[string]int)
	add := func(s string, mandatory bool) error {
		req, err := probe.ParseRequest(s)
		if err != nil {
			return err
		}
		req.Mandatory = mandatory
		key := req.String()
		if i, ok := index[key]; ok {
			reqs[i].Mandatory = reqs[i].Mandatory || mandatory
			return nil
		}
		index[key] = len(reqs)
		reqs = append(reqs, req)
		return nil
	}
	for _, s := range require {
		if err := add(s, true); err != nil {
			return nil, err
		}
	}
	for _, s := range optional {
		if err := add(s, false); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}
