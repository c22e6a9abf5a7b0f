package wordlist

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func writeWordFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("Failed to write word file: %v", err)
	}
	return path
}

func TestWordsFiltersLengthAndAlpha(t *testing.T) {
	path := writeWordFile(t, "Chair\ntable\nab\nhouse\nit's\nbutterfly\n  lamp  \n123\n")
	list := NewList(path, nil)

	words := list.Words(4, 6)
	expected := map[string]bool{"chair": true, "table": true, "house": true, "lamp": true}
	if len(words) != len(expected) {
		t.Fatalf("Expected %d words, got %d: %v", len(expected), len(words), words)
	}
	for _, w := range words {
		if !expected[w] {
			t.Errorf("Unexpected word %q in filtered output", w)
		}
	}
}

func TestContains(t *testing.T) {
	path := writeWordFile(t, "chair\ntable\n")
	list := NewList(path, nil)

	if !list.Contains("chair") {
		t.Error("Contains(chair) = false")
	}
	if !list.Contains("CHAIR") {
		t.Error("Contains is not case-insensitive")
	}
	if list.Contains("zebra") {
		t.Error("Contains(zebra) = true for absent word")
	}
}

func TestMissingFileUsesFallback(t *testing.T) {
	list := NewList(filepath.Join(t.TempDir(), "missing.txt"), nil)

	if list.Len() == 0 {
		t.Fatal("Expected fallback words for a missing file")
	}
	if words := list.Words(5, 9); len(words) == 0 {
		t.Error("Fallback list has no 5-9 letter words")
	}
}

func TestPrefixesAreDistinctThreeLetter(t *testing.T) {
	path := writeWordFile(t, "chair\nchart\ntable\ntales\nhouse\n")
	list := NewList(path, nil)

	prefixes := list.Prefixes(10, rand.New(rand.NewSource(1)))
	seen := make(map[string]bool)
	for _, p := range prefixes {
		if len(p) != 3 {
			t.Errorf("Prefix %q is not 3 letters", p)
		}
		if seen[p] {
			t.Errorf("Duplicate prefix %q", p)
		}
		seen[p] = true
	}
	// chair/chart share "cha", table/tales share "tab"/"tal": expect cha, tab, tal, hou.
	if len(prefixes) != 4 {
		t.Errorf("Expected 4 distinct prefixes, got %d: %v", len(prefixes), prefixes)
	}
}

func TestSample(t *testing.T) {
	path := writeWordFile(t, "cats\ndogs\nbird\nfish\ntree\n")
	list := NewList(path, nil)

	words, ok := list.Sample(3, 4, 4, rand.New(rand.NewSource(2)))
	if !ok {
		t.Fatal("Sample reported not enough words")
	}
	if len(words) != 3 {
		t.Fatalf("Expected 3 sampled words, got %d", len(words))
	}
	seen := make(map[string]bool)
	for _, w := range words {
		if seen[w] {
			t.Errorf("Sample returned duplicate %q", w)
		}
		seen[w] = true
	}

	if _, ok := list.Sample(10, 4, 4, nil); ok {
		t.Error("Sample succeeded with fewer eligible words than requested")
	}
}
