// Package forge defines the steps that turn a fresh Laravel skeleton into a
// configured API project, and the checkpoint taken after each of them.
package forge

import (
	"context"
	"path/filepath"

	"laravel-api-forge/internal/config"
	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/pipeline"
	"laravel-api-forge/internal/vcs"
)

// Options tune the generated project.
type Options struct {
	TestProcesses int
	Formatter     config.Formatter
}

// OptionsFromConfig extracts the forge options from the loaded configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		TestProcesses: cfg.Hooks.TestProcesses,
		Formatter:     cfg.Formatter,
	}
}

// Forge builds the provisioning pipeline.
type Forge struct {
	run  invoker.Runner
	git  *vcs.Git
	opts Options
}

// New creates a Forge that runs every external command through run.
func New(run invoker.Runner, opts Options) *Forge {
	def := config.Default()
	if opts.TestProcesses <= 0 {
		opts.TestProcesses = def.Hooks.TestProcesses
	}
	if opts.Formatter.Path == "" {
		opts.Formatter.Path = def.Formatter.Path
	}
	if opts.Formatter.Pattern == "" {
		opts.Formatter.Pattern = def.Formatter.Pattern
	}
	return &Forge{run: run, git: vcs.New(run), opts: opts}
}

// Pipeline returns the ordered provisioning pipeline.
func (f *Forge) Pipeline() *pipeline.Pipeline {
	return pipeline.New(&Checkpointer{run: f.run, git: f.git, formatter: f.opts.Formatter}, f.Steps()...)
}

// Provision runs the whole pipeline for pc.
func (f *Forge) Provision(ctx context.Context, pc pipeline.ProjectContext) (*pipeline.Run, error) {
	return f.Pipeline().Run(ctx, pc)
}

// cmd runs args inside the project root.
func (f *Forge) cmd(ctx context.Context, pc pipeline.ProjectContext, args ...string) error {
	return f.run.Run(ctx, invoker.Cmd(pc.Root, args...))
}

// artisan runs php artisan inside the project root.
func (f *Forge) artisan(ctx context.Context, pc pipeline.ProjectContext, args ...string) error {
	return f.cmd(ctx, pc, append([]string{pc.PHP, "artisan"}, args...)...)
}

func projectFile(pc pipeline.ProjectContext, rel string) string {
	return filepath.Join(pc.Root, filepath.FromSlash(rel))
}

// PrintFeatures lists the selected optional features.
func PrintFeatures(f pipeline.Features) {
	mark := func(on bool) string {
		if on {
			return "✅"
		}
		return "❌"
	}
	logger.Line("Selected features:\n")
	logger.Line("%s Redis Cache\n", mark(f.Redis))
	logger.Line("%s RBAC Package\n", mark(f.RBAC))
	logger.Line("%s Modular Architecture\n", mark(f.Modules))
	logger.Line("\n")
}

// PrintNextSteps tells the user how to start the new project.
func PrintNextSteps(name string) {
	logger.Line("\n")
	logger.Comment("🚀 Next steps:\n")
	logger.Line("   cd %s\n", name)
	logger.Line("   ./vendor/bin/sail up -d\n")
	logger.Line("   ./vendor/bin/sail artisan migrate\n")
	logger.Line("\n")
	logger.Comment("📦 Frontend assets (using pnpm):\n")
	logger.Line("   ./vendor/bin/sail pnpm install    # Install frontend packages\n")
	logger.Line("   ./vendor/bin/sail pnpm build      # Build frontend assets\n")
	logger.Line("\n")
	logger.Comment("📚 Documentation:\n")
	logger.Line("   API docs will be available in: docs/v1/\n")
	logger.Line("\n")
}
