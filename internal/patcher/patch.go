// Package patcher applies literal, anchor-based edits to text files of a generated
// project, plus a few structural edits that literal anchors cannot express.
//
// Every edit is safe to re-run: a missing anchor is a no-op, and a replacement that
// re-contains its own anchor is skipped once its text is present.
package patcher

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/logger"
)

// Result reports what Patch did with a file.
type Result int

const (
	// Applied means the file existed. It may or may not have changed.
	Applied Result = iota
	// Skipped means the file does not exist.
	Skipped
)

func (r Result) String() string {
	if r == Skipped {
		return "skipped"
	}
	return "applied"
}

// Replacement is a literal search and replace. Every occurrence of Search is replaced.
type Replacement struct {
	Search  string
	Replace string
}

// R is shorthand for a Replacement.
func R(search, replace string) Replacement {
	return Replacement{Search: search, Replace: replace}
}

// Apply rewrites content. It is a pure function.
func Apply(content string, reps []Replacement) string {
	for _, r := range reps {
		if r.Search == "" {
			continue
		}
		// "Insert after anchor" edits keep the anchor; don't insert twice.
		if strings.Contains(r.Replace, r.Search) && strings.Contains(content, r.Replace) {
			continue
		}
		content = strings.ReplaceAll(content, r.Search, r.Replace)
	}
	return content
}

// Patch applies reps to the file at path in order. A missing file is Skipped, not
// an error. The file is rewritten only when its content changed, keeping its mode.
func Patch(path string, reps []Replacement) (Result, error) {
	return Edit(path, func(content string) string {
		return Apply(content, reps)
	})
}

// Edit passes the content of path through fn and writes the result back when it
// differs. A missing file is Skipped.
func Edit(path string, fn func(string) string) (Result, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("[DEBUG] Patch skipped, %s does not exist\n", path)
		return Skipped, nil
	}
	if err != nil {
		return Skipped, apperr.Wrap(apperr.FileOperationFailed, "Failed to stat "+path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Skipped, apperr.Wrap(apperr.FileOperationFailed, "Failed to read "+path, err)
	}

	updated := fn(string(raw))
	if updated == string(raw) {
		return Applied, nil
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return Skipped, apperr.Wrap(apperr.FileOperationFailed, "Failed to write "+path, err)
	}
	logger.Debug("[DEBUG] Patched %s\n", path)
	return Applied, nil
}
