package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client), mr, func() { mr.Close() }
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _, done := newRedisStore(t)
	defer done()

	ctx := context.Background()
	if err := s.PutTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("PutTTL failed: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "v" {
		t.Fatalf("expected %q, got %q", "v", got)
	}

	present, err := s.Exists(ctx, "k")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !present {
		t.Fatal("expected key to exist")
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	s, _, done := newRedisStore(t)
	defer done()

	ctx := context.Background()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	present, err := s.Exists(ctx, "missing")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if present {
		t.Fatal("missing key reported present")
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	s, mr, done := newRedisStore(t)
	defer done()

	ctx := context.Background()
	if err := s.PutTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("PutTTL failed: %v", err)
	}

	mr.FastForward(59 * time.Second)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	mr.FastForward(2 * time.Second)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestRedisStoreRejectsNonPositiveTTL(t *testing.T) {
	s, _, done := newRedisStore(t)
	defer done()

	if err := s.PutTTL(context.Background(), "k", "v", 0); err == nil {
		t.Fatal("expected error for zero TTL")
	}
}

func TestRedisStoreDeleteIsIdempotent(t *testing.T) {
	s, _, done := newRedisStore(t)
	defer done()

	ctx := context.Background()
	if err := s.PutTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("PutTTL failed: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestRedisStoreCompareAndDelete(t *testing.T) {
	s, _, done := newRedisStore(t)
	defer done()

	ctx := context.Background()
	if err := s.PutTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("PutTTL failed: %v", err)
	}

	deleted, err := s.CompareAndDelete(ctx, "k", "other")
	if err != nil {
		t.Fatalf("CompareAndDelete failed: %v", err)
	}
	if deleted {
		t.Fatal("mismatched value must not delete")
	}

	deleted, err = s.CompareAndDelete(ctx, "k", "v")
	if err != nil {
		t.Fatalf("CompareAndDelete failed: %v", err)
	}
	if !deleted {
		t.Fatal("matching value must delete")
	}

	deleted, err = s.CompareAndDelete(ctx, "k", "v")
	if err != nil {
		t.Fatalf("CompareAndDelete failed: %v", err)
	}
	if deleted {
		t.Fatal("missing key must report false")
	}
}

func TestRedisStoreCompareAndDeleteSingleWinner(t *testing.T) {
	s, _, done := newRedisStore(t)
	defer done()

	ctx := context.Background()
	if err := s.PutTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("PutTTL failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			deleted, err := s.CompareAndDelete(ctx, "k", "v")
			if err != nil {
				t.Errorf("CompareAndDelete failed: %v", err)
				results <- false
				return
			}
			results <- deleted
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for deleted := range results {
		if deleted {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr, done := newRedisStore(t)
	done()
	_ = mr

	ctx := context.Background()
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := s.PutTTL(ctx, "k", "v", time.Minute); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := s.CompareAndDelete(ctx, "k", "v"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
