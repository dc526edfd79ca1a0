// Package vcs drives git through the invoker. It only knows the handful of
// porcelain commands the provisioning pipeline needs.
package vcs

import (
	"context"

	"laravel-api-forge/internal/invoker"
)

// Git runs git commands in a repository directory.
type Git struct {
	run invoker.Runner
}

// New returns a Git client backed by run.
func New(run invoker.Runner) *Git {
	return &Git{run: run}
}

// Init creates an empty repository in dir.
func (g *Git) Init(ctx context.Context, dir string) error {
	return g.run.Run(ctx, invoker.Cmd(dir, "git", "init"))
}

// SetConfig writes a repository-local config value.
func (g *Git) SetConfig(ctx context.Context, dir, key, value string) error {
	return g.run.Run(ctx, invoker.Cmd(dir, "git", "config", key, value))
}

// AddAll stages every change in the working tree.
func (g *Git) AddAll(ctx context.Context, dir string) error {
	return g.run.Run(ctx, invoker.Cmd(dir, "git", "add", "."))
}

// Commit records the index with message. allowEmpty permits a commit without
// staged changes.
func (g *Git) Commit(ctx context.Context, dir, message string, allowEmpty bool) error {
	args := []string{"git", "commit", "-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	return g.run.Run(ctx, invoker.Cmd(dir, args...))
}

// ChangedFiles lists modified, added and untracked paths relative to dir.
func (g *Git) ChangedFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := g.run.Output(ctx, invoker.Cmd(dir, "git", "status", "--porcelain", "--untracked-files=all"))
	if err != nil {
		return nil, err
	}
	return ParsePorcelain(out), nil
}
