package vcs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ParsePorcelain extracts paths from `git status --porcelain` (v1) output.
// Renamed and copied entries yield their new path; C-quoted paths are unquoted.
func ParsePorcelain(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) < 4 {
			continue
		}
		xy, rest := line[:2], line[3:]

		if strings.ContainsAny(xy, "RC") {
			if i := strings.LastIndex(rest, " -> "); i >= 0 {
				rest = rest[i+len(" -> "):]
			}
		}
		paths = append(paths, unquote(rest))
	}
	return paths
}

func unquote(path string) string {
	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		if s, err := strconv.Unquote(path); err == nil {
			return s
		}
	}
	return path
}

// Filter keeps the paths matching the doublestar pattern that still exist under root.
// Deleted files are dropped. An invalid pattern is returned as an error.
func Filter(root, pattern string, paths []string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	var kept []string
	for _, p := range paths {
		slashed := filepath.ToSlash(p)
		if ok, _ := doublestar.Match(pattern, slashed); !ok {
			continue
		}
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(slashed)))
		if err != nil || info.IsDir() {
			continue
		}
		kept = append(kept, slashed)
	}
	return kept, nil
}
