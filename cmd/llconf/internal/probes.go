package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goplus/llconf/internal/feature"
	"github.com/goplus/llconf/internal/probe/checks"
	"github.com/goplus/llconf/internal/session"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List the known probes",
	Long: `Probes lists the feature names configure accepts. After a configure run,
the capabilities each probe provided are shown next to it.`,
	Args: cobra.NoArgs,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
}

func runProbes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := session.LoadState(cfg.WorkDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	out := cmd.OutOrStdout()
	names := checks.NewRegistry().Names()
	if st == nil {
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	}
	e := st.Env()
	for _, name := range names {
		caps := feature.Owned(e, name)
		if len(caps) == 0 {
			fmt.Fprintf(out, "%s\t-\n", name)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", name, strings.Join(caps, ", "))
	}
	return nil
}
