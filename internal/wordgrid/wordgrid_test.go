package wordgrid

import (
	"math/rand"
	"strings"
	"testing"
)

func TestPlaceKeepsWordReadable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := New(5, rng)

	if !g.Place("cats") {
		t.Fatal("Failed to place 4-letter word in empty 5x5 grid")
	}

	positions := g.Positions("cats")
	if len(positions) != 4 {
		t.Fatalf("Expected 4 positions, got %d", len(positions))
	}
	for i, pos := range positions {
		if pos.Row < 0 || pos.Row >= 5 || pos.Col < 0 || pos.Col >= 5 {
			t.Errorf("Position %d out of bounds: %+v", i, pos)
		}
		if g.cells[pos.Row][pos.Col] != "cats"[i] {
			t.Errorf("Cell at %+v holds %q, expected %q", pos, g.cells[pos.Row][pos.Col], "cats"[i])
		}
	}
}

func TestPlaceRejectsOversizedWord(t *testing.T) {
	g := New(5, rand.New(rand.NewSource(1)))
	if g.Place("butterfly") {
		t.Error("9-letter word placed in a 5x5 grid")
	}
	if g.Place("") {
		t.Error("Empty word reported as placed")
	}
}

func TestOverlapOnlyOnMatchingLetters(t *testing.T) {
	// With many words in a small grid, any successful placements must never
	// corrupt a previously placed word.
	rng := rand.New(rand.NewSource(7))
	g := New(5, rng)

	words := []string{"cats", "stem", "tree", "mast"}
	var placed []string
	for _, w := range words {
		if g.Place(w) {
			placed = append(placed, w)
		}
	}

	for _, w := range placed {
		for i, pos := range g.Positions(w) {
			if g.cells[pos.Row][pos.Col] != w[i] {
				t.Errorf("Word %q corrupted at %+v after later placements", w, pos)
			}
		}
	}
}

func TestFillLeavesNoEmptyCells(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g, ok := Build(8, []string{"bird", "stone", "garden"}, rng)
	if !ok {
		t.Fatal("Build failed to place all words in 8x8 grid")
	}

	for r := range g.cells {
		for c := range g.cells[r] {
			cell := g.cells[r][c]
			if cell < 'a' || cell > 'z' {
				t.Fatalf("Cell (%d,%d) = %q, expected a lowercase letter", r, c, cell)
			}
		}
	}
}

func TestFormatIsMonospaceBlock(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g, ok := Build(5, []string{"lamp"}, rng)
	if !ok {
		t.Fatal("Build failed")
	}

	out := g.Format()
	if !strings.HasPrefix(out, "```\n") || !strings.HasSuffix(out, "```") {
		t.Errorf("Format output not wrapped in a code block: %q", out)
	}

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "```\n"), "```"), "\n")
	var rows []string
	for _, line := range lines {
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) != 5 {
		t.Fatalf("Expected 5 grid rows, got %d", len(rows))
	}
	for _, row := range rows {
		// 5 letters separated by single spaces.
		if len(row) != 9 {
			t.Errorf("Row %q has width %d, expected 9", row, len(row))
		}
	}
}

func TestContains(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g, ok := Build(5, []string{"fish"}, rng)
	if !ok {
		t.Fatal("Build failed")
	}
	if !g.Contains("fish") {
		t.Error("Contains(fish) = false after placement")
	}
	if g.Contains("bird") {
		t.Error("Contains(bird) = true for unplaced word")
	}
}
