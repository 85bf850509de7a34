// Package vcs reads the version control state of a source tree.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// VCS defines the interface for version control queries.
type VCS interface {
	// Files returns the versioned files of the work tree at dir, relative
	// to dir and slash separated.
	Files(ctx context.Context, dir string) ([]string, error)

	// Revision describes the checked-out revision of dir: the tag on HEAD
	// when there is one, otherwise the abbreviated commit hash. A work
	// tree with uncommitted changes to tracked files gets a "-dirty"
	// suffix.
	Revision(ctx context.Context, dir string) (string, error)
}

// gitVCS implements VCS using git.
type gitVCS struct {
	git string
}

// GitOption configures gitVCS.
type GitOption func(*gitVCS)

// WithGitPath sets a custom git executable path.
func WithGitPath(path string) GitOption {
	return func(g *gitVCS) {
		g.git = path
	}
}

// NewGitVCS creates a new git VCS instance.
func NewGitVCS(opts ...GitOption) VCS {
	g := &gitVCS{git: "git"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *gitVCS) Files(ctx context.Context, dir string) ([]string, error) {
	output, err := g.output(ctx, dir, "ls-files", "-z", "--cached")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	var files []string
	for _, f := range strings.Split(output, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

func (g *gitVCS) Revision(ctx context.Context, dir string) (string, error) {
	rev, err := g.head(ctx, dir)
	if err != nil {
		return "", err
	}
	status, err := g.output(ctx, dir, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	if strings.TrimSpace(status) != "" {
		rev += "-dirty"
	}
	return rev, nil
}

func (g *gitVCS) head(ctx context.Context, dir string) (string, error) {
	if tag, err := g.output(ctx, dir, "describe", "--tags", "--exact-match", "HEAD"); err == nil {
		if tag = strings.TrimSpace(tag); tag != "" {
			return tag, nil
		}
	}
	output, err := g.output(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get HEAD: %w", err)
	}
	output = strings.TrimSpace(output)
	if output == "" {
		return "", fmt.Errorf("no HEAD found in %s", dir)
	}
	return output, nil
}

func (g *gitVCS) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.git, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s", msg)
		}
		return "", err
	}
	return stdout.String(), nil
}
