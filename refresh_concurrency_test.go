package tokenward

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	authority, rdb, done := newTestAuthority(t, testConfig())
	defer done()

	pair, err := authority.Issue(context.Background(), testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := authority.Refresh(context.Background(), pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	fail := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if errors.Is(err, ErrRefreshReused) || errors.Is(err, ErrBlacklisted) {
			fail++
			continue
		}
		t.Fatalf("unexpected refresh error: %v", err)
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh success, got %d", success)
	}
	if fail != n-1 {
		t.Fatalf("expected %d refresh failures, got %d", n-1, fail)
	}

	if keys := rdb.DBSize(context.Background()).Val(); keys < 0 {
		t.Fatalf("unexpected redis db size %d", keys)
	}
}

func TestConcurrentVerifyAccessIsSafe(t *testing.T) {
	authority, _, done := newTestAuthority(t, testConfig())
	defer done()

	pair, err := authority.Issue(context.Background(), testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := authority.VerifyAccess(context.Background(), pair.AccessToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("concurrent VerifyAccess failed: %v", err)
		}
	}
}
