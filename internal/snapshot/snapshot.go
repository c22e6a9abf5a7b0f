// Package snapshot provides atomic JSON document persistence with a backup
// fallback. Several features keep a small JSON file on disk (chat histories,
// mood tracking, prompt shuffles, workshop submissions); they all share the
// same crash-safety protocol: write to a temp file, rotate the canonical file
// to a backup, rename the temp file into place.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// BackupPath returns the backup file path used for a canonical path.
func BackupPath(path string) string {
	return path + ".backup"
}

// Save marshals v pretty-printed and atomically replaces the document at
// path. The previous document survives as the backup. On failure the prior
// canonical file is left in place, with a best-effort backup restore when the
// canonical went missing mid-protocol.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return restoreOnFailure(path, fmt.Errorf("create snapshot dir: %w", err))
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return restoreOnFailure(path, fmt.Errorf("write temp snapshot: %w", err))
	}

	backup := BackupPath(path)
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, backup); err != nil {
			return restoreOnFailure(path, fmt.Errorf("rotate snapshot backup: %w", err))
		}
	}

	if err := os.Rename(tempFile, path); err != nil {
		return restoreOnFailure(path, fmt.Errorf("replace snapshot: %w", err))
	}
	return nil
}

// Load unmarshals the document at path into v, falling back to the backup
// when the canonical file is missing or unparseable. When neither is usable
// it returns os.ErrNotExist wrapped with both causes.
func Load(path string, v any) error {
	canonicalErr := loadOne(path, v)
	if canonicalErr == nil {
		return nil
	}
	backupErr := loadOne(BackupPath(path), v)
	if backupErr == nil {
		return nil
	}
	return fmt.Errorf("%w: canonical: %v, backup: %v", os.ErrNotExist, canonicalErr, backupErr)
}

func loadOne(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("empty snapshot %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// restoreOnFailure puts the backup back as canonical if a failed save left no
// canonical file, then returns the original cause.
func restoreOnFailure(path string, cause error) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		backup := BackupPath(path)
		if _, berr := os.Stat(backup); berr == nil {
			_ = os.Rename(backup, path)
		}
	}
	return cause
}
