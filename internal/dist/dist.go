// Package dist packs the versioned files of a source tree, plus built
// binaries, into a release archive named after the revision.
package dist

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qiniu/x/log"
	"github.com/zeebo/blake3"
	"golang.org/x/mod/semver"

	"github.com/goplus/llconf/internal/vcs"
)

// Format selects the archive format.
type Format string

const (
	Zip   Format = "zip"
	TarXZ Format = "tar.xz"
)

// DefaultInclude lists the patterns of unversioned files packed by
// default.
var DefaultInclude = []string{"*.exe", "*.dll"}

// Options configures Package.
type Options struct {
	// Name prefixes the release name, e.g. "game" gives "game1.2.0".
	Name string
	// Dir is the root of the source tree.
	Dir string
	// OutDir receives the archive. Defaults to Dir/dist.
	OutDir string
	// Include lists doublestar patterns of extra files, relative to Dir.
	Include []string
	// Format defaults to Zip.
	Format Format
	// Revision overrides the revision reported by version control.
	Revision string
}

// Result describes a packed release.
type Result struct {
	Release string
	Archive string
	// Digest is the hex BLAKE3 sum of the archive, also written to
	// Archive+".b3".
	Digest string
	Files  []string
}

// Package collects the files of the release and writes its archive.
func Package(ctx context.Context, v vcs.VCS, opts Options) (*Result, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("dist: release name is empty")
	}
	if opts.Format == "" {
		opts.Format = Zip
	}
	if opts.OutDir == "" {
		opts.OutDir = filepath.Join(opts.Dir, "dist")
	}

	rev := opts.Revision
	if rev == "" {
		var err error
		if rev, err = v.Revision(ctx, opts.Dir); err != nil {
			return nil, fmt.Errorf("dist: %w", err)
		}
	}
	release := opts.Name + releaseVersion(rev)

	files, err := v.Files(ctx, opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("dist: %w", err)
	}
	extra, err := include(opts)
	if err != nil {
		return nil, err
	}
	files = appendNew(files, extra)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, err
	}
	archive := filepath.Join(opts.OutDir, release+"."+string(opts.Format))
	log.Debugf("dist: packing %d files into %s", len(files), archive)
	if err := write(archive, opts.Format, opts.Dir, release, files); err != nil {
		os.Remove(archive)
		return nil, fmt.Errorf("dist: write %s: %w", archive, err)
	}
	digest, err := writeDigest(archive)
	if err != nil {
		return nil, err
	}
	return &Result{Release: release, Archive: archive, Digest: digest, Files: files}, nil
}

// releaseVersion turns a revision into the version part of a release
// name. Semantic version tags lose their "v" prefix.
func releaseVersion(rev string) string {
	if semver.IsValid(rev) {
		return strings.TrimPrefix(semver.Canonical(rev), "v")
	}
	return rev
}

// include expands the extra patterns of opts, skipping anything inside
// the output directory.
func include(opts Options) ([]string, error) {
	patterns := opts.Include
	if patterns == nil {
		patterns = DefaultInclude
	}
	outRel, err := filepath.Rel(opts.Dir, opts.OutDir)
	if err != nil {
		outRel = ""
	}
	outRel = filepath.ToSlash(outRel)

	fsys := os.DirFS(opts.Dir)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("dist: include %s: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if outRel != "" && !strings.HasPrefix(outRel, "..") && (m == outRel || strings.HasPrefix(m, outRel+"/")) {
				continue
			}
			files = append(files, m)
		}
	}
	return files, nil
}

func appendNew(list, extra []string) []string {
	for _, f := range extra {
		if !slices.Contains(list, f) {
			list = append(list, f)
		}
	}
	return list
}

func write(archive string, format Format, dir, release string, files []string) error {
	f, err := os.Create(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case Zip:
		err = writeZip(f, dir, release, files)
	case TarXZ:
		err = writeTarXZ(f, dir, release, files)
	default:
		err = fmt.Errorf("unknown archive format %q", format)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// entryName returns the archive path of file inside the release
// directory.
func entryName(release, file string) string {
	return path.Join(release, filepath.ToSlash(file))
}

func writeDigest(archive string) (string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	digest := hex.EncodeToString(h.Sum(nil))
	line := digest + "  " + filepath.Base(archive) + "\n"
	if err := os.WriteFile(archive+".b3", []byte(line), 0o644); err != nil {
		return "", err
	}
	return digest, nil
}
