// Package tokenward is a token authority: it issues, verifies, rotates,
// and revokes short-lived access tokens and longer-lived refresh tokens
// for authenticated sessions, reconciling stateless signed credentials
// with server-side revocation over a TTL-indexed credential store.
//
// The package is designed for concurrent server workloads: Authority
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// tokenward is the public surface. It exposes [Authority], [Builder],
// [Config], and value types (Identity, TokenPair, Introspection,
// MetricsSnapshot). Token signing lives in the jwt subpackage; the
// credential store contract and both implementations live in store.
//
// # What this package must NOT do
//
//   - Read environment variables or otherwise select its own store; the
//     composing layer wires dependencies through the Builder.
//   - Hold in-process session state; every trust decision derives from
//     the signed token plus the credential store.
//   - Retry failed store calls; ErrStoreUnavailable is surfaced for the
//     caller to retry with backoff.
//
// # Concurrency contract
//
// Rotation is at-most-one-success: when the same refresh token is
// presented concurrently, exactly one call returns a new pair and every
// other call observes ErrRefreshReused or ErrBlacklisted. The store's
// conditional compare-and-delete is the decider; the Authority holds no
// locks.
package tokenward
