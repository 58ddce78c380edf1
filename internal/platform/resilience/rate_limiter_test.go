package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_SpacesRequests(t *testing.T) {
	l := NewRateLimiter(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Fatalf("expected at least two intervals between three requests, got %s", elapsed)
	}
}

func TestRateLimiter_HonoursContext(t *testing.T) {
	l := NewRateLimiter(time.Hour)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first request must pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatalf("expected wait to fail once ctx is done")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("disabled limiter must not block: %v", err)
		}
	}
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy{MaxRetries: 2, BaseDelay: 100 * time.Millisecond}
	if p.Attempts() != 3 {
		t.Fatalf("unexpected attempts %d", p.Attempts())
	}
	if p.Backoff(2) != 200*time.Millisecond {
		t.Fatalf("unexpected backoff %s", p.Backoff(2))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}
