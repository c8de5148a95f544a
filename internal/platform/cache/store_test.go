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

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_ExpiresEntriesAfterTTL(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "season:active", "2025-2026")
	if _, ok := store.Get(context.Background(), "season:active"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get(context.Background(), "season:active"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestStore_DeletePrefixOnlyDropsNamespace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(0)
	store.Set(ctx, "season:list", 1)
	store.Set(ctx, "season:id:2025-2026", 2)
	store.Set(ctx, "team:list", 3)

	store.DeletePrefix(ctx, "season:")

	if store.Len() != 1 {
		t.Fatalf("expected only team entry left, len=%d", store.Len())
	}
	if _, ok := store.Get(ctx, "team:list"); !ok {
		t.Fatalf("expected team entry to survive")
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	boom := errors.New("db down")
	if _, err := store.GetOrLoad(context.Background(), "team:list", func(context.Context) (any, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing cached after error")
	}
}

func TestNamespace(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"season:list":        "season",
		"gameweek:s1:week:3": "gameweek",
		"plain":              "default",
		":leading-colon":     "default",
	}
	for key, want := range cases {
		if got := namespace(key); got != want {
			t.Fatalf("namespace(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestStore_MaxEntriesEvictsSoonestExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute, WithMaxEntries(2))
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "principal:a", 1)
	now = now.Add(10 * time.Second)
	store.Set(context.Background(), "principal:b", 2)
	now = now.Add(10 * time.Second)
	store.Set(context.Background(), "principal:c", 3)

	if store.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", store.Len())
	}
	if _, ok := store.Get(context.Background(), "principal:a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	for _, key := range []string{"principal:b", "principal:c"} {
		if _, ok := store.Get(context.Background(), key); !ok {
			t.Fatalf("expected %s to survive", key)
		}
	}

	// Overwriting an existing key never evicts.
	store.Set(context.Background(), "principal:b", 22)
	if store.Len() != 2 {
		t.Fatalf("expected overwrite to keep 2 entries, got %d", store.Len())
	}
}
