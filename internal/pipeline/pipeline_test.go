package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-api-forge/internal/logger"
)

type recordingCheckpointer struct {
	messages []string
	failOn   string
}

func (c *recordingCheckpointer) Checkpoint(_ context.Context, _ ProjectContext, message string) error {
	if message == c.failOn {
		return errors.New("commit rejected")
	}
	c.messages = append(c.messages, message)
	return nil
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	color.NoColor = true
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(nil) })
	return &buf
}

func rbacOnly(f Features) bool { return f.RBAC }

func redisOnly(f Features) bool { return f.Redis }

func steps(trace *[]string, failing string) []Step {
	act := func(title string) func(context.Context, ProjectContext) error {
		return func(context.Context, ProjectContext) error {
			*trace = append(*trace, title)
			if title == failing {
				return errors.New("boom")
			}
			return nil
		}
	}
	return []Step{
		{Title: "create", Action: act("create")},
		{Title: "init", Action: act("init")},
		{Title: "redis", Commit: "Setup Redis cache", When: redisOnly, Action: act("redis")},
		{Title: "rbac", Commit: "Setup RBAC package", When: rbacOnly, Action: act("rbac")},
		{Title: "hooks", Commit: "Setup Git hooks", Action: act("hooks")},
		{Title: "finalize", Action: act("finalize")},
	}
}

func TestRun_SkipsDisabledSteps(t *testing.T) {
	log := captureLog(t)
	var trace []string
	cp := &recordingCheckpointer{}

	run, err := New(cp, steps(&trace, "")...).Run(context.Background(), ProjectContext{Features: Features{RBAC: true}})
	require.NoError(t, err)

	assert.Equal(t, Completed, run.State)
	assert.Equal(t, []string{"create", "init", "rbac", "hooks", "finalize"}, trace)
	assert.Equal(t, []string{"redis"}, run.Skipped)
	assert.Equal(t, []string{"Setup RBAC package", "Setup Git hooks"}, cp.messages)
	assert.Equal(t, cp.messages, run.Commits)
	assert.Contains(t, log.String(), "rbac: ✔")
	assert.Contains(t, log.String(), "Committing step: Setup Git hooks: ✔")
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	captureLog(t)
	var trace []string
	cp := &recordingCheckpointer{}

	run, err := New(cp, steps(&trace, "rbac")...).Run(context.Background(), ProjectContext{Features: Features{RBAC: true}})
	require.EqualError(t, err, "boom")

	assert.Equal(t, Failed, run.State)
	assert.Equal(t, 3, run.Index)
	assert.Equal(t, err, run.Err)
	assert.Equal(t, []string{"create", "init", "rbac"}, trace)
	assert.Empty(t, cp.messages)
}

func TestRun_CheckpointFailureAborts(t *testing.T) {
	captureLog(t)
	var trace []string
	cp := &recordingCheckpointer{failOn: "Setup RBAC package"}

	run, err := New(cp, steps(&trace, "")...).Run(context.Background(), ProjectContext{Features: Features{RBAC: true}})
	require.Error(t, err)

	assert.Equal(t, Failed, run.State)
	assert.Equal(t, []string{"create", "init", "rbac"}, trace)
	assert.Empty(t, run.Commits)
}

func TestRun_CancelledContext(t *testing.T) {
	captureLog(t)
	var trace []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := New(nil, steps(&trace, "")...).Run(ctx, ProjectContext{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Failed, run.State)
	assert.Empty(t, trace)
}

func TestPlan(t *testing.T) {
	var trace []string
	p := New(nil, steps(&trace, "")...)

	assert.Equal(t, []string{"create", "init", "redis", "rbac", "hooks", "finalize"},
		p.Plan(Features{Redis: true, RBAC: true}))
	assert.Equal(t, []string{"create", "init", "hooks", "finalize"}, p.Plan(Features{}))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not started", NotStarted.String())
	assert.Equal(t, "failed", Failed.String())
}
