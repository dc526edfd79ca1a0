// Package pipeline runs an ordered list of provisioning steps, checkpointing the
// project after each one. The first failure stops the run; checkpoints already
// taken are kept.
package pipeline

import (
	"context"

	"laravel-api-forge/internal/logger"
)

type (
	// Features are the optional parts of a project chosen before the run.
	Features struct {
		Redis   bool
		RBAC    bool
		Modules bool
	}

	// GitIdentity is written into the repository config when set.
	GitIdentity struct {
		Email string
		Name  string
	}

	// ProjectContext describes the project being provisioned. It is built once
	// before the first step and passed by value.
	ProjectContext struct {
		Name      string
		Root      string // absolute project directory
		ParentDir string // directory the generator runs in
		PHP       string // interpreter used for artisan
		Features  Features
		Git       GitIdentity
	}

	// Step is one unit of provisioning work.
	Step struct {
		Title string
		// Commit is the checkpoint message. Empty means no checkpoint.
		Commit string
		// When gates the step on the selected features. Nil means always.
		When   func(Features) bool
		Action func(ctx context.Context, pc ProjectContext) error
	}

	// Checkpointer records the project state after a step.
	Checkpointer interface {
		Checkpoint(ctx context.Context, pc ProjectContext, message string) error
	}

	// Pipeline is a static, ordered step list.
	Pipeline struct {
		steps []Step
		cp    Checkpointer
	}
)

// Enabled reports whether the step runs for f.
func (s Step) Enabled(f Features) bool {
	return s.When == nil || s.When(f)
}

// New creates a Pipeline.
func New(cp Checkpointer, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, cp: cp}
}

// Steps returns the step list.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// Plan returns the titles of the steps that would run for f.
func (p *Pipeline) Plan(f Features) []string {
	var titles []string
	for _, s := range p.steps {
		if s.Enabled(f) {
			titles = append(titles, s.Title)
		}
	}
	return titles
}

// Run executes every enabled step in order. The returned Run is always non-nil and
// its Err equals the returned error.
func (p *Pipeline) Run(ctx context.Context, pc ProjectContext) (*Run, error) {
	run := &Run{Index: -1}
	run.start()

	for i, step := range p.steps {
		run.Index = i
		if !step.Enabled(pc.Features) {
			logger.Debug("[DEBUG] Skipping step %q\n", step.Title)
			run.Skipped = append(run.Skipped, step.Title)
			continue
		}
		if err := ctx.Err(); err != nil {
			return run, run.fail(err)
		}

		err := logger.Task(step.Title, func() error {
			if step.Action == nil {
				return nil
			}
			return step.Action(ctx, pc)
		})
		if err != nil {
			return run, run.fail(err)
		}
		run.Executed = append(run.Executed, step.Title)

		if step.Commit == "" || p.cp == nil {
			continue
		}
		err = logger.Task("Committing step: "+step.Commit, func() error {
			return p.cp.Checkpoint(ctx, pc, step.Commit)
		})
		if err != nil {
			return run, run.fail(err)
		}
		run.Commits = append(run.Commits, step.Commit)
	}

	run.complete()
	return run, nil
}
