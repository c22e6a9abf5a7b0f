package discord

import (
	"errors"
	"math/rand"
	"os"
	"time"

	"github.com/girlyearning/nyx/internal/snapshot"
)

// rotationState is the persisted cursor of a no-repeat shuffle: a
// shuffled order over table indices and the next position to serve.
// Reshuffled when exhausted, so nothing repeats until the whole table
// has been seen.
type rotationState struct {
	Order []int `json:"order"`
	Next  int   `json:"next"`
}

// nextRotation draws the next index from the shuffle persisted at path,
// for a table of the given size. Callers hold stateMu.
func (b *Bot) nextRotation(path string, size int) int {
	var state rotationState
	if err := snapshot.Load(path, &state); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("error loading rotation state, reshuffling", "path", path, "error", err)
	}

	if len(state.Order) != size || state.Next >= len(state.Order) {
		state = rotationState{Order: rand.New(rand.NewSource(time.Now().UnixNano())).Perm(size)}
	}

	idx := state.Order[state.Next]
	state.Next++
	if err := snapshot.Save(path, &state); err != nil {
		b.logger.Error("error saving rotation state", "path", path, "error", err)
	}
	return idx
}
