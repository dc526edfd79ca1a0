package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/config"
	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/invoker/invokertest"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/prompt"
	"laravel-api-forge/internal/prompt/prompttest"
)

var healthyTools = map[string]string{
	"php":      "PHP 8.3.7 (cli)\n",
	"composer": "Composer version 2.7.6 2024-05-04 23:03:15\n",
	"laravel":  "Laravel Installer 5.8.3\n",
	"git":      "git version 2.45.1\n",
}

type harness struct {
	cwd      string
	config   string
	log      *bytes.Buffer
	out      *bytes.Buffer
	recorder *invokertest.Recorder
	prompter *prompttest.Scripted
}

// newHarness swaps every external collaborator of the CLI for a fake.
func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("FORGE_RELEASE_REPO", "")

	h := &harness{
		cwd:      t.TempDir(),
		log:      &bytes.Buffer{},
		out:      &bytes.Buffer{},
		recorder: &invokertest.Recorder{},
		prompter: &prompttest.Scripted{},
	}
	h.config = filepath.Join(h.cwd, "config.yaml")
	h.recorder.OnOutput = func(cmd invoker.Command) (string, error) {
		if v, ok := healthyTools[cmd.Args[0]]; ok {
			return v, nil
		}
		return "", errors.New("not found")
	}

	prevNoColor := color.NoColor
	color.NoColor = true
	logger.SetOutput(h.log)

	prevRunner, prevPrompter, prevGetwd, prevVersion := newRunner, newPrompter, getwd, Version
	newRunner = func(config.Config) invoker.Runner { return h.recorder }
	newPrompter = func(bool) prompt.Prompter { return h.prompter }
	getwd = func() (string, error) { return h.cwd, nil }

	t.Cleanup(func() {
		newRunner, newPrompter, getwd, Version = prevRunner, prevPrompter, prevGetwd, prevVersion
		color.NoColor = prevNoColor
		logger.Init(false)
		logger.SetOutput(nil)
		cfg = config.Default()
	})
	return h
}

func (h *harness) run(args ...string) error {
	return Execute(context.Background(), append([]string{"--config", h.config}, args...), h.out)
}

func TestNew_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing name", []string{"new"}},
		{"two names", []string{"new", "a", "b"}},
		{"invalid name", []string{"new", "my app"}},
		{"parent directory", []string{"new", ".."}},
		{"unknown flag", []string{"new", "demo", "--mysql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, apperr.Usage, apperr.KindOf(err))
			assert.Equal(t, 2, apperr.ExitCode(err))
			assert.Empty(t, h.recorder.Calls)
		})
	}
}

func TestNew_ExistingDirectory(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.Mkdir(filepath.Join(h.cwd, "demo"), 0o755))

	err := h.run("new", "demo")
	assert.Equal(t, apperr.Usage, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, h.recorder.Calls)
}

func TestNew_EnvironmentCheckFailed(t *testing.T) {
	h := newHarness(t)
	h.recorder.OnOutput = func(cmd invoker.Command) (string, error) {
		if cmd.Args[0] == "laravel" {
			return "", errors.New("not found")
		}
		return healthyTools[cmd.Args[0]], nil
	}

	err := h.run("new", "demo")
	require.Error(t, err)
	assert.Equal(t, apperr.EnvironmentCheckFailed, apperr.KindOf(err))
	assert.Equal(t, 1, apperr.ExitCode(err))
	assert.Contains(t, h.log.String(), "❌ Laravel Installer: Laravel Installer not found in PATH")
	assert.Contains(t, h.log.String(), "Installation guides")
	assert.Empty(t, h.prompter.Asked)
}

func TestNew_FlagsSkipPromptsAndFailureAborts(t *testing.T) {
	h := newHarness(t)
	h.prompter.Confirms = map[string]bool{"Do you want to install modular architecture?": false}
	h.prompter.Answers = map[string]string{"Enter your git email (optional)": "dev@example.com"}
	h.recorder.OnRun = func(cmd invoker.Command) error {
		return apperr.New(apperr.CommandFailed, "Command failed: "+cmd.String())
	}

	err := h.run("new", "demo", "--redis", "--rbac")
	require.Error(t, err)
	assert.Equal(t, apperr.CommandFailed, apperr.KindOf(err))

	assert.Equal(t, []string{
		"Do you want to install modular architecture?",
		"Enter your git email (optional)",
		"Enter your git name (optional)",
	}, h.prompter.Asked)

	log := h.log.String()
	assert.Contains(t, log, "Creating Laravel API project: demo")
	assert.Contains(t, log, "✅ Redis Cache\n✅ RBAC Package\n❌ Modular Architecture")
	assert.Contains(t, log, "Creating Laravel project: ✘")
	assert.NotContains(t, log, "has been created successfully")

	lines := h.recorder.Lines()
	assert.Equal(t, "laravel new demo --pest --no-interaction", lines[len(lines)-1])
	assert.Equal(t, h.cwd, h.recorder.Calls[len(lines)-1].Dir)
}

func TestNew_NoInteractionUsesConfig(t *testing.T) {
	h := newHarness(t)
	newPrompter = func(noInteraction bool) prompt.Prompter {
		assert.True(t, noInteraction)
		return prompt.Defaults{}
	}
	require.NoError(t, os.WriteFile(h.config, []byte(`
defaults:
  redis: false
  rbac: true
  modules: false
git:
  email: ci@example.com
`), 0o644))
	h.recorder.OnRun = func(cmd invoker.Command) error {
		return errors.New("stop")
	}

	_ = h.run("new", "api", "-n")

	assert.Contains(t, h.log.String(), "❌ Redis Cache\n✅ RBAC Package\n❌ Modular Architecture")
}

func TestNew_InvalidConfig(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.config, []byte("defaults: [nope"), 0o644))

	err := h.run("new", "demo")
	assert.Equal(t, apperr.Usage, apperr.KindOf(err))
	assert.Empty(t, h.recorder.Calls)
}

func TestAskIdentity_ConfiguredValuesSkipPrompts(t *testing.T) {
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg.Git = config.Git{Email: "a@b.c", Name: "Dev"}

	p := &prompttest.Scripted{}
	id, err := askIdentity(p)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", id.Email)
	assert.Equal(t, "Dev", id.Name)
	assert.Empty(t, p.Asked)
}

func TestSelfUpdate_NotPackaged(t *testing.T) {
	for _, flags := range [][]string{nil, {"--check"}, {"--rollback"}, {"--force", "--pre-release"}} {
		h := newHarness(t)
		Version = "dev"

		err := h.run(append([]string{"self-update"}, flags...)...)
		require.Error(t, err)
		assert.Equal(t, apperr.NotPackaged, apperr.KindOf(err))
		assert.Equal(t, "This command can only be used when running from a packaged binary.", err.Error())
		assert.Equal(t, 1, apperr.ExitCode(err))
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	Version = "v1.4.2"

	require.NoError(t, h.run("version"))
	assert.Equal(t, "forge v1.4.2\n", h.out.String())
}

func TestNotesURL(t *testing.T) {
	newHarness(t)

	assert.Equal(t, "https://github.com/acme/forge/releases/tag/v1.2.0",
		notesURL("https://github.com/acme/forge/releases/tag/v1.2.0"))
	assert.Equal(t, releasesPage(), notesURL(""))
	assert.Equal(t, "https://github.com/goez-tools/laravel-api-forge/releases", notesURL(""))
}
