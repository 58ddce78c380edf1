package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "family:L1", "v")
	if _, ok := store.Get(context.Background(), "family:L1"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "family:L1"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_DeletePrefixAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(0)
	store.Set(ctx, "events:L1:all", 1)
	store.Set(ctx, "events:L1:asset:player:4", 2)
	store.Set(ctx, "events:L2:all", 3)

	store.DeletePrefix(ctx, "events:L1:")
	if store.Len() != 1 {
		t.Fatalf("expected only L2 entry to remain, got %d", store.Len())
	}

	store.Clear()
	if store.Len() != 0 {
		t.Fatalf("expected empty store after Clear, got %d", store.Len())
	}
}

func TestLoad_TypedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	got, err := Load(context.Background(), store, "k", func(context.Context) ([]string, error) {
		return []string{"L2024", "L2023"}, nil
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected value %v", got)
	}

	if _, err := Load(context.Background(), store, "k", func(context.Context) (int, error) { return 0, nil }); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
