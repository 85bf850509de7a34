package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/llconf/internal/dist"
	"github.com/goplus/llconf/internal/vcs"
)

var (
	distName     string
	distFormat   string
	distOutDir   string
	distRevision string
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "Package a snapshot of the source tree",
	Long: `Dist packs the files under version control, plus the unversioned files
matched by the include patterns, into dist/<name><revision>.zip or .tar.xz
and writes its BLAKE3 digest next to it.`,
	Args: cobra.NoArgs,
	RunE: runDist,
}

func init() {
	distCmd.Flags().StringVarP(&distName, "name", "n", "", "Release name prefix")
	distCmd.Flags().StringVarP(&distFormat, "format", "f", "", "Archive format: zip or tar.xz")
	distCmd.Flags().StringVarP(&distOutDir, "outdir", "o", "", "Output directory (default dist)")
	distCmd.Flags().StringVar(&distRevision, "revision", "", "Revision to use instead of asking git")
	rootCmd.AddCommand(distCmd)
}

func runDist(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := dist.Options{Dir: ".", Revision: distRevision}
	if d := cfg.Dist; d != nil {
		opts.Name = d.Name
		opts.OutDir = d.OutDir
		opts.Format = dist.Format(d.Format)
		opts.Include = d.Include
	}
	if distName != "" {
		opts.Name = distName
	}
	if distFormat != "" {
		opts.Format = dist.Format(distFormat)
	}
	if distOutDir != "" {
		opts.OutDir = distOutDir
	}
	if opts.Name == "" {
		return errors.New("no release name, set dist.name or pass --name")
	}

	res, err := dist.Package(context.Background(), vcs.NewGitVCS(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files\n%s  %s\n", res.Archive, len(res.Files), res.Digest, res.Release)
	return nil
}
