package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// A collector receives message events matching its filter. Timed game
// rounds open one for the round's window and drain it until the
// deadline.
type collector struct {
	filter func(*discordgo.MessageCreate) bool
	ch     chan *discordgo.MessageCreate
}

type collectorHub struct {
	mu   sync.Mutex
	open map[*collector]struct{}
}

func newCollectorHub() *collectorHub {
	return &collectorHub{open: make(map[*collector]struct{})}
}

func (h *collectorHub) add(filter func(*discordgo.MessageCreate) bool) *collector {
	c := &collector{filter: filter, ch: make(chan *discordgo.MessageCreate, 64)}
	h.mu.Lock()
	h.open[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *collectorHub) remove(c *collector) {
	h.mu.Lock()
	delete(h.open, c)
	h.mu.Unlock()
}

// dispatch fans a message out to every matching collector. A full
// collector drops the message rather than block the gateway handler.
func (h *collectorHub) dispatch(m *discordgo.MessageCreate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.open {
		if !c.filter(m) {
			continue
		}
		select {
		case c.ch <- m:
		default:
		}
	}
}

// collect runs handle for every matching message until ctx expires.
func (b *Bot) collect(ctx context.Context, filter func(*discordgo.MessageCreate) bool, handle func(*discordgo.MessageCreate)) {
	c := b.collectors.add(filter)
	defer b.collectors.remove(c)
	for {
		select {
		case m := <-c.ch:
			handle(m)
		case <-ctx.Done():
			return
		}
	}
}
