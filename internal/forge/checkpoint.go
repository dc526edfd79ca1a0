package forge

import (
	"context"
	"path/filepath"
	"strings"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/config"
	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/patcher"
	"laravel-api-forge/internal/pipeline"
	"laravel-api-forge/internal/vcs"
)

// Checkpointer formats changed sources and commits everything after a step.
type Checkpointer struct {
	run       invoker.Runner
	git       *vcs.Git
	formatter config.Formatter
}

var _ pipeline.Checkpointer = (*Checkpointer)(nil)

// Checkpoint runs the formatter on changed source files, stages the whole tree
// and commits it as message. The commit is allowed to be empty.
func (c *Checkpointer) Checkpoint(ctx context.Context, pc pipeline.ProjectContext, message string) error {
	changed, err := c.git.ChangedFiles(ctx, pc.Root)
	if err != nil {
		return err
	}
	sources, err := vcs.Filter(pc.Root, c.formatter.Pattern, changed)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Invalid formatter pattern "+c.formatter.Pattern, err)
	}

	if len(sources) > 0 {
		if err := c.format(ctx, pc, sources); err != nil {
			return err
		}
	}

	if err := c.git.AddAll(ctx, pc.Root); err != nil {
		return err
	}
	return c.git.Commit(ctx, pc.Root, message, true)
}

func (c *Checkpointer) format(ctx context.Context, pc pipeline.ProjectContext, files []string) error {
	bin := c.formatter.Path
	if !patcher.Exists(resolve(pc.Root, bin)) {
		logger.Comment("Pint not found, skipping code formatting\n")
		return nil
	}
	if !filepath.IsAbs(bin) && !strings.HasPrefix(bin, ".") {
		bin = "./" + filepath.ToSlash(bin)
	}

	logger.Info("Running Pint to format PHP code...\n")
	return c.run.Run(ctx, invoker.Cmd(pc.Root, append([]string{bin}, files...)...))
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}
