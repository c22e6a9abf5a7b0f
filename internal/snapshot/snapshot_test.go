package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	want := doc{Name: "nudge", Count: 7}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var got doc
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Round trip mismatch: got %+v, expected %+v", got, want)
	}
}

func TestSecondSaveRotatesBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := Save(path, doc{Name: "first", Count: 1}); err != nil {
		t.Fatalf("First Save failed: %v", err)
	}
	if err := Save(path, doc{Name: "second", Count: 2}); err != nil {
		t.Fatalf("Second Save failed: %v", err)
	}

	var backup doc
	if err := loadOne(BackupPath(path), &backup); err != nil {
		t.Fatalf("Backup missing or unreadable: %v", err)
	}
	if backup.Name != "first" {
		t.Errorf("Backup holds %q, expected prior snapshot %q", backup.Name, "first")
	}
}

func TestLoadFallsBackToBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := Save(path, doc{Name: "good", Count: 3}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save(path, doc{Name: "newer", Count: 4}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("Failed to corrupt canonical: %v", err)
	}

	var got doc
	if err := Load(path, &got); err != nil {
		t.Fatalf("Load with corrupt canonical failed: %v", err)
	}
	if got.Name != "good" {
		t.Errorf("Expected backup contents %q, got %q", "good", got.Name)
	}
}

func TestLoadMissingBothFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	var got doc
	err := Load(path, &got)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
