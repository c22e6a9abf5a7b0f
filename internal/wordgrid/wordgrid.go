// Package wordgrid builds word-hunt puzzle grids: hidden words placed in
// random positions and directions, remaining cells filled with random
// letters.
package wordgrid

import (
	"math/rand"
	"strings"
)

const placementAttempts = 60

// Position is one grid cell, row-major.
type Position struct {
	Row, Col int
}

// Grid is a square letter grid under construction. Unfilled cells hold '.'.
type Grid struct {
	size      int
	cells     [][]byte
	positions map[string][]Position
	rng       *rand.Rand
}

// direction deltas: right, down, the four diagonals, left, up.
var directions = [][2]int{
	{0, 1}, {1, 0}, {1, 1}, {-1, 0},
	{0, -1}, {-1, -1}, {-1, 1}, {1, -1},
}

// New creates an empty size×size grid. rng may be nil, in which case the
// shared global source is used; tests inject a seeded source.
func New(size int, rng *rand.Rand) *Grid {
	cells := make([][]byte, size)
	for i := range cells {
		cells[i] = []byte(strings.Repeat(".", size))
	}
	return &Grid{
		size:      size,
		cells:     cells,
		positions: make(map[string][]Position),
		rng:       rng,
	}
}

// Size returns the grid dimension.
func (g *Grid) Size() int { return g.size }

// Positions returns the placed cell positions for a word, nil when the word
// was never placed.
func (g *Grid) Positions(word string) []Position {
	return g.positions[word]
}

func (g *Grid) intn(n int) int {
	if g.rng != nil {
		return g.rng.Intn(n)
	}
	return rand.Intn(n)
}

// Place tries to put word into the grid at a random position and direction,
// allowing overlap on matching letters. It gives up after a bounded number of
// attempts and reports whether the word was placed.
func (g *Grid) Place(word string) bool {
	if len(word) == 0 || len(word) > g.size {
		return false
	}
	for attempt := 0; attempt < placementAttempts; attempt++ {
		dir := directions[g.intn(len(directions))]
		row := g.intn(g.size)
		col := g.intn(g.size)

		endRow := row + dir[0]*(len(word)-1)
		endCol := col + dir[1]*(len(word)-1)
		if endRow < 0 || endRow >= g.size || endCol < 0 || endCol >= g.size {
			continue
		}

		positions := make([]Position, 0, len(word))
		fits := true
		for i := 0; i < len(word); i++ {
			r := row + dir[0]*i
			c := col + dir[1]*i
			cell := g.cells[r][c]
			if cell != '.' && cell != word[i] {
				fits = false
				break
			}
			positions = append(positions, Position{Row: r, Col: c})
		}
		if !fits {
			continue
		}

		for i, pos := range positions {
			g.cells[pos.Row][pos.Col] = word[i]
		}
		g.positions[word] = positions
		return true
	}
	return false
}

// Fill replaces every unfilled cell with a random lowercase letter.
func (g *Grid) Fill() {
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c] == '.' {
				g.cells[r][c] = byte('a' + g.intn(26))
			}
		}
	}
}

// Contains reports whether word was placed in this grid.
func (g *Grid) Contains(word string) bool {
	_, ok := g.positions[word]
	return ok
}

// Format renders the grid as a monospace code block for a Discord embed.
func (g *Grid) Format() string {
	var b strings.Builder
	b.WriteString("```\n")
	for _, row := range g.cells {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(cell)
		}
		b.WriteByte('\n')
	}
	b.WriteString("```")
	return b.String()
}

// Build constructs a filled puzzle grid hiding all the given words. It
// reports the built grid and whether every word fit; callers retry with a
// fresh word selection when placement fails.
func Build(size int, words []string, rng *rand.Rand) (*Grid, bool) {
	g := New(size, rng)
	for _, word := range words {
		if !g.Place(word) {
			return g, false
		}
	}
	g.Fill()
	return g, true
}
