package tokenward

import "errors"

var (
	// ErrMalformed means the token could not be parsed.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid means the signature did not verify or the token
	// was minted for another issuer or audience.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired means the token's expiry is in the past.
	ErrExpired = errors.New("token expired")
	// ErrWrongTokenType means a token of one kind was presented where the
	// other kind is required.
	ErrWrongTokenType = errors.New("wrong token type")
	// ErrBlacklisted means the specific token was revoked and must never
	// be honored again.
	ErrBlacklisted = errors.New("token blacklisted")
	// ErrSessionRevoked means all of the identity's access tokens were
	// invalidated by a revoke-all inside the revocation window.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrRefreshReused means the presented refresh token is not the
	// identity's current one: it was never stored, already rotated away,
	// or replayed.
	ErrRefreshReused = errors.New("refresh token not found or already used")
	// ErrRefreshRateLimited means refresh attempts for the identity
	// exceeded the configured throttle window.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrStoreUnavailable means the credential store could not be reached
	// inside the operation timeout. Callers may retry with backoff; it is
	// never conflated with a definitive rejection.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrAuthorityNotReady is returned by methods on a nil or unbuilt
	// Authority.
	ErrAuthorityNotReady = errors.New("authority not initialized")
)
