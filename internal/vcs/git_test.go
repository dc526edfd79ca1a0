package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/invoker/invokertest"
)

func TestGit_Commands(t *testing.T) {
	rec := &invokertest.Recorder{}
	g := New(rec)
	ctx := context.Background()

	require.NoError(t, g.Init(ctx, "/p"))
	require.NoError(t, g.SetConfig(ctx, "/p", "user.email", "dev@example.com"))
	require.NoError(t, g.AddAll(ctx, "/p"))
	require.NoError(t, g.Commit(ctx, "/p", "Init commit", false))
	require.NoError(t, g.Commit(ctx, "/p", "Setup Git hooks", true))

	assert.Equal(t, []string{
		"git init",
		"git config user.email dev@example.com",
		"git add .",
		"git commit -m Init commit",
		"git commit -m Setup Git hooks --allow-empty",
	}, rec.Lines())
	for _, c := range rec.Calls {
		assert.Equal(t, "/p", c.Dir)
	}
}

func TestGit_ChangedFiles(t *testing.T) {
	rec := &invokertest.Recorder{
		OnOutput: func(invoker.Command) (string, error) {
			return " M app/Models/User.php\n?? docs/v1/.gitkeep\n", nil
		},
	}

	files, err := New(rec).ChangedFiles(context.Background(), "/p")
	require.NoError(t, err)
	assert.Equal(t, []string{"app/Models/User.php", "docs/v1/.gitkeep"}, files)
	assert.Equal(t, []string{"git status --porcelain --untracked-files=all"}, rec.Lines())
}

func TestParsePorcelain(t *testing.T) {
	out := " M bootstrap/app.php\n" +
		"A  routes/api.php\n" +
		"D  tests/Unit/ExampleTest.php\n" +
		"R  old/Name.php -> app/Name.php\n" +
		"?? \"with space/\\303\\251t\\303\\251.php\"\n" +
		"\n"

	assert.Equal(t, []string{
		"bootstrap/app.php",
		"routes/api.php",
		"tests/Unit/ExampleTest.php",
		"app/Name.php",
		"with space/été.php",
	}, ParsePorcelain(out))
}

func TestFilter(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"app/Models/User.php", "routes/api.php", "vite.config.js"} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	kept, err := Filter(root, "**/*.php", []string{
		"app/Models/User.php",
		"routes/api.php",
		"vite.config.js",
		"tests/Unit/ExampleTest.php", // deleted
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/Models/User.php", "routes/api.php"}, kept)

	_, err = Filter(root, "[", nil)
	assert.Error(t, err)
}
