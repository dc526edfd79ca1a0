package selfupdate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BackupPath returns the single backup slot of exe: <dir>/<name>-old<ext>.
func BackupPath(exe string) string {
	dir, base := filepath.Split(exe)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"-old"+ext)
}

// writeBackup copies src to dst, preserving its mode. The copy goes to a
// temporary sibling first, so dst is either the previous backup or a complete copy.
func writeBackup(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source failed: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".backup-*")
	if err != nil {
		return fmt.Errorf("create temp backup failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp backup failed: %w", err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod backup failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename backup failed: %w", err)
	}
	return nil
}
