package discord

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestThrottleZeroIntervalDoesNotBlock(t *testing.T) {
	th := NewThrottle(0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Expected immediate return, took %v", elapsed)
	}
}

func TestThrottleSpacesCalls(t *testing.T) {
	th := NewThrottle(20 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := th.Wait(context.Background()); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
	// First call is immediate, the next two wait one interval each.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Expected at least 40ms of spacing, got %v", elapsed)
	}
}

func TestThrottleWaitHonorsContext(t *testing.T) {
	th := NewThrottle(time.Hour)
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("First Wait should be immediate, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := th.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}
