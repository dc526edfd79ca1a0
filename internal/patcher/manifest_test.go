package patcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-api-forge/internal/apperr"
)

const composerFixture = `{
    "name": "laravel/laravel",
    "type": "project",
    "require": {
        "php": "^8.2"
    },
    "scripts": {
        "post-autoload-dump": [
            "Illuminate\\Foundation\\ComposerScripts::postAutoloadDump",
            "@php artisan package:discover --ansi"
        ],
        "test": "@php artisan test"
    },
    "config": {
        "sort-packages": true
    }
}
`

func writeComposer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "composer.json")
	require.NoError(t, os.WriteFile(path, []byte(composerFixture), 0o644))
	return path
}

func TestManifest_UnchangedRoundTrip(t *testing.T) {
	path := writeComposer(t)
	require.NoError(t, EditManifest(path, func(*Manifest) error { return nil }))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, composerFixture, string(got))
}

func TestManifest_AppendScript(t *testing.T) {
	path := writeComposer(t)
	hooks := "git config --local core.hooksPath .git-hooks/ || exit 0"

	for i := 0; i < 2; i++ {
		require.NoError(t, EditManifest(path, func(m *Manifest) error {
			return m.AppendScript("post-autoload-dump", hooks)
		}))
	}

	m, err := LoadManifest(path)
	require.NoError(t, err)
	list := m.Get(Key("scripts", "post-autoload-dump")).Array()
	require.Len(t, list, 3)
	assert.Equal(t, hooks, list[2].String())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), ".git-hooks/ || exit 0", "slashes stay unescaped")
}

func TestManifest_AppendScriptPromotesString(t *testing.T) {
	path := writeComposer(t)
	require.NoError(t, EditManifest(path, func(m *Manifest) error {
		return m.AppendScript("test", "@php artisan lint")
	}))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	list := m.Get("scripts.test").Array()
	require.Len(t, list, 2)
	assert.Equal(t, "@php artisan test", list[0].String())
	assert.Equal(t, "@php artisan lint", list[1].String())
}

func TestManifest_SetScriptAndSet(t *testing.T) {
	path := writeComposer(t)
	require.NoError(t, EditManifest(path, func(m *Manifest) error {
		if err := m.SetScript("lint", "vendor/bin/pint"); err != nil {
			return err
		}
		if err := m.Set(Key("extra", "merge-plugin"), map[string][]string{"include": {"modules/*/composer.json"}}); err != nil {
			return err
		}
		return m.Set(Key("config", "allow-plugins", "wikimedia/composer-merge-plugin"), true)
	}))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "vendor/bin/pint", m.Get("scripts.lint.0").String())
	assert.Equal(t, "modules/*/composer.json", m.Get("extra.merge-plugin.include.0").String())
	assert.True(t, m.Get(Key("config", "allow-plugins", "wikimedia/composer-merge-plugin")).Bool())
	assert.True(t, m.Get("config.sort-packages").Bool())

	// Existing keys keep their position.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(raw), `"name"`), strings.Index(string(raw), `"scripts"`))
	assert.Less(t, strings.Index(string(raw), `"scripts"`), strings.Index(string(raw), `"config"`))
	assert.Contains(t, string(raw), "\n    \"name\": \"laravel/laravel\",")
}

func TestManifest_InsertScriptAfter(t *testing.T) {
	path := writeComposer(t)

	var inserted []bool
	for i := 0; i < 2; i++ {
		require.NoError(t, EditManifest(path, func(m *Manifest) error {
			ok, err := m.InsertScriptAfter("post-autoload-dump", "@php artisan package:discover --ansi", "@php artisan rbac:reset")
			inserted = append(inserted, ok)
			return err
		}))
	}
	assert.Equal(t, []bool{true, false}, inserted)

	m, err := LoadManifest(path)
	require.NoError(t, err)
	list := m.Get(Key("scripts", "post-autoload-dump")).Array()
	require.Len(t, list, 3)
	assert.Equal(t, "@php artisan package:discover --ansi", list[1].String())
	assert.Equal(t, "@php artisan rbac:reset", list[2].String())
}

func TestManifest_InsertScriptAfterMissingAnchor(t *testing.T) {
	path := writeComposer(t)
	m, err := LoadManifest(path)
	require.NoError(t, err)

	ok, err := m.InsertScriptAfter("post-autoload-dump", "@php artisan nope", "@php artisan rbac:reset")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadManifest_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "composer.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scripts": [`), 0o644))

	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Equal(t, apperr.FileOperationFailed, apperr.KindOf(err))
}
