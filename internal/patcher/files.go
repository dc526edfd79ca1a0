package patcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"laravel-api-forge/internal/apperr"
)

// WriteFile writes content to path, creating parent directories (0755).
func WriteFile(path string, content []byte, perm fs.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, content, perm); err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Failed to write "+path, err)
	}
	// WriteFile keeps the mode of an existing file; hooks must end up executable.
	if err := os.Chmod(path, perm); err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Failed to chmod "+path, err)
	}
	return nil
}

// EnsureDir creates dir and its parents if needed.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Failed to create directory "+dir, err)
	}
	return nil
}

// RemoveIfExists deletes a single file. A missing file is not an error.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return apperr.Wrap(apperr.FileOperationFailed, "Failed to remove "+path, err)
}

// RemoveAllIfExists deletes a directory tree.
func RemoveAllIfExists(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return apperr.Wrap(apperr.FileOperationFailed, "Failed to remove "+path, err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
