// Package state persists the record of the last self-update next to the backup
// binary, so a later process can tell which version a rollback restores.
package state

import (
	"encoding/json" // For JSON encoding and decoding of the record file
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"laravel-api-forge/internal/logger"
)

// UpdateRecord describes the last replacement of the running binary.
type UpdateRecord struct {
	CurrentVersion  string    `json:"current_version"`  // Version installed by the update
	PreviousVersion string    `json:"previous_version"` // Version kept in the backup slot
	RemoteVersion   string    `json:"remote_version"`   // Release tag the update came from
	BinaryPath      string    `json:"binary_path"`      // Absolute path of the replaced executable
	BackupPath      string    `json:"backup_path"`      // Absolute path of the single backup
	UpdatedAt       time.Time `json:"updated_at"`       // When the swap happened (UTC)
}

// RecordPath returns where the record of backupPath lives.
func RecordPath(backupPath string) string {
	return backupPath + ".json"
}

// Load reads the record stored beside backupPath.
// A missing record returns (nil, nil); a corrupt one is an error.
func Load(backupPath string) (*UpdateRecord, error) {
	path := RecordPath(backupPath)
	file, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rec UpdateRecord
	if err := json.Unmarshal(file, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &rec, nil
}

// Save overwrites the record beside rec.BackupPath. The file is written to a
// temporary sibling first and renamed into place.
func Save(rec *UpdateRecord) error {
	if rec.BackupPath == "" {
		return errors.New("update record has no backup path")
	}
	file, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal update record: %w", err)
	}

	path := RecordPath(rec.BackupPath)
	logger.Debug("[DEBUG] Writing update record to %s:\n%s\n", path, string(file))

	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp record: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(file, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp record: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write record %s: %w", path, err)
	}
	return nil
}

// Remove deletes the record beside backupPath. A missing record is not an error.
func Remove(backupPath string) error {
	err := os.Remove(RecordPath(backupPath))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to remove update record: %w", err)
}
