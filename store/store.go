package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("store: key not found")

// ErrUnavailable wraps transport and backend failures. It is never returned
// for an absent key; callers rely on that distinction to tell "not there"
// from "could not look".
var ErrUnavailable = errors.New("store: backend unavailable")

// Store is the narrow interface the token authority consumes. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound if absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// PutTTL writes value under key, overwriting any existing value and its
	// TTL. ttl must be positive.
	PutTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key holds an unexpired value.
	Exists(ctx context.Context, key string) (bool, error)

	// CompareAndDelete deletes key only if it currently holds expect, in a
	// single conditional round trip. It returns true when the delete
	// happened. Absent, expired, and mismatched keys all return false.
	CompareAndDelete(ctx context.Context, key, expect string) (bool, error)
}
