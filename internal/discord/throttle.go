package discord

import (
	"context"
	"sync"
	"time"
)

// Throttle spaces outbound Discord calls so batch payouts and shutdown
// sweeps do not trip the API rate limit. Every send, reaction and DM in
// the bot reserves a slot here first.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until the caller's reserved slot arrives or ctx is done.
// Concurrent callers are served in reservation order.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
