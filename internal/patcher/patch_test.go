package patcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laravel-api-forge/internal/apperr"
)

const userModel = `<?php

namespace App\Models;

use Illuminate\Database\Eloquent\Factories\HasFactory;
use Illuminate\Foundation\Auth\User as Authenticatable;
use Illuminate\Notifications\Notifiable;

class User extends Authenticatable
{
    use HasFactory, Notifiable;
}
`

var sanctum = []Replacement{
	R(`use Illuminate\Foundation\Auth\User as Authenticatable;`,
		"use Illuminate\\Foundation\\Auth\\User as Authenticatable;\nuse Laravel\\Sanctum\\HasApiTokens;"),
	R("use HasFactory, Notifiable;", "use HasApiTokens, HasFactory, Notifiable;"),
}

func TestApply_IsIdempotent(t *testing.T) {
	once := Apply(userModel, sanctum)
	assert.Contains(t, once, "use Laravel\\Sanctum\\HasApiTokens;")
	assert.Contains(t, once, "use HasApiTokens, HasFactory, Notifiable;")

	twice := Apply(once, sanctum)
	assert.Equal(t, once, twice)
}

func TestApply_MissingAnchorIsNoop(t *testing.T) {
	content := "nothing to see"
	assert.Equal(t, content, Apply(content, []Replacement{R("absent", "present")}))
}

func TestApply_ReplacesEveryOccurrence(t *testing.T) {
	assert.Equal(t, "b b", Apply("a a", []Replacement{R("a", "b")}))
}

func TestPatch_MissingFileIsSkipped(t *testing.T) {
	res, err := Patch(filepath.Join(t.TempDir(), "absent.php"), sanctum)
	require.NoError(t, err)
	assert.Equal(t, Skipped, res)
}

func TestPatch_RewritesAndKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "User.php")
	require.NoError(t, os.WriteFile(path, []byte(userModel), 0o640))

	res, err := Patch(path, sanctum)
	require.NoError(t, err)
	assert.Equal(t, Applied, res)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Apply(userModel, sanctum), string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestPatch_ReadFailureIsFileOperationFailed(t *testing.T) {
	dir := t.TempDir()
	_, err := Patch(dir, sanctum) // a directory cannot be read as a file
	require.Error(t, err)
	assert.Equal(t, apperr.FileOperationFailed, apperr.KindOf(err))
}

func TestFileHelpers(t *testing.T) {
	root := t.TempDir()
	hook := filepath.Join(root, ".git-hooks", "pre-commit")

	require.NoError(t, WriteFile(hook, []byte("#!/bin/sh\n"), 0o755))
	info, err := os.Stat(hook)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	require.NoError(t, RemoveIfExists(hook))
	require.NoError(t, RemoveIfExists(hook))
	assert.False(t, Exists(hook))

	require.NoError(t, RemoveAllIfExists(filepath.Join(root, ".git-hooks")))
	require.NoError(t, RemoveAllIfExists(filepath.Join(root, "missing")))
	assert.NoDirExists(t, filepath.Join(root, ".git-hooks"))
}
