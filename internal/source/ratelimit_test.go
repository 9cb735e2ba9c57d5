package source

import (
	"context"
	"testing"
	"time"
)

func TestIntervalLimiter_SpacesCalls(t *testing.T) {
	interval := 20 * time.Millisecond
	limiter := NewIntervalLimiter(interval)

	start := time.Now()
	for i := 0; i < 4; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error: %v", err)
		}
	}
	elapsed := time.Since(start)

	// First call is immediate, the next three each wait one interval.
	if min := 3 * interval; elapsed < min {
		t.Errorf("4 calls took %v, want at least %v", elapsed, min)
	}
}

func TestIntervalLimiter_ContextCancellation(t *testing.T) {
	limiter := NewIntervalLimiter(time.Hour)

	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Error("Wait() with expired context should return an error")
	}
}
