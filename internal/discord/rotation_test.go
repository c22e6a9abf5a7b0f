package discord

import (
	"log/slog"
	"os"
	"testing"
)

func newRotationTestBot(t *testing.T) *Bot {
	t.Helper()
	return &Bot{
		Config: &Config{StorageDir: t.TempDir()},
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

func TestRotationCoversTableWithoutRepeats(t *testing.T) {
	b := newRotationTestBot(t)
	path := b.statePath("rotation.json")

	const size = 7
	seen := make(map[int]bool)
	for i := 0; i < size; i++ {
		idx := b.nextRotation(path, size)
		if idx < 0 || idx >= size {
			t.Fatalf("Index %d out of range", idx)
		}
		if seen[idx] {
			t.Errorf("Index %d repeated before the table was exhausted", idx)
		}
		seen[idx] = true
	}
	if len(seen) != size {
		t.Errorf("Expected %d distinct indices, got %d", size, len(seen))
	}

	// The next cycle reshuffles and covers the table again.
	second := make(map[int]bool)
	for i := 0; i < size; i++ {
		second[b.nextRotation(path, size)] = true
	}
	if len(second) != size {
		t.Errorf("Second cycle covered %d of %d indices", len(second), size)
	}
}

func TestRotationSurvivesTableResize(t *testing.T) {
	b := newRotationTestBot(t)
	path := b.statePath("rotation.json")

	b.nextRotation(path, 4)
	// A grown table invalidates the stored order; the draw must still
	// be in range.
	idx := b.nextRotation(path, 9)
	if idx < 0 || idx >= 9 {
		t.Errorf("Index %d out of range after resize", idx)
	}
}
