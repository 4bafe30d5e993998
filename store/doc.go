// Package store abstracts the TTL-indexed key-value service that backs the
// token authority: refresh-token bookkeeping, the token blacklist, and
// coarse session-revocation markers.
//
// # Contract
//
// Both implementations obey the same contract: a value that has outlived
// its TTL behaves as absent on the next read, Delete is idempotent, and
// PutTTL overwrites an existing value together with its TTL.
// [RedisStore] is the production implementation; [MemoryStore] reproduces
// the identical expiry semantics in process so expiry-dependent tests run
// against either.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT interpret token
// contents, compute revocation TTLs, or make trust decisions; those
// responsibilities belong to the Authority.
package store
