package tokenward

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"
)

const revokedMarker = "1"

// Blacklist marks a specific token, of either kind, as never to be
// honored again. The entry lives for the token's remaining lifetime or
// the configured floor, whichever is longer; a token that cannot even be
// decoded still gets the floor, so logout can never fail to record
// intent.
func (a *Authority) Blacklist(ctx context.Context, token string) error {
	if a == nil {
		return ErrAuthorityNotReady
	}

	ttl := a.config.Revocation.BlacklistTTLFloor
	if decoded, ok := a.codec.DecodeUnsafe(token); ok && decoded.Claims.ExpiresAt != nil {
		if remaining := time.Until(decoded.Claims.ExpiresAt.Time); remaining > ttl {
			ttl = remaining
		}
	}

	sctx, cancel := a.storeCtx(ctx)
	defer cancel()

	if err := a.store.PutTTL(sctx, a.blacklistKey(token), revokedMarker, ttl); err != nil {
		a.metrics.Inc(MetricStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	a.metrics.Inc(MetricBlacklistWrite)
	a.emitAudit(ctx, AuditEvent{
		EventType: AuditTokenBlacklist,
		JTI:       a.tokenJTI(token),
		Success:   true,
	})
	return nil
}

// RevokeSession deletes the identity's active refresh token, so future
// refresh attempts fail. Already-issued access tokens stay valid until
// they expire; use [Authority.RevokeAll] to cut those off too.
func (a *Authority) RevokeSession(ctx context.Context, userID string) error {
	if a == nil {
		return ErrAuthorityNotReady
	}

	sctx, cancel := a.storeCtx(ctx)
	defer cancel()

	if err := a.store.Delete(sctx, a.refreshKey(userID)); err != nil {
		a.metrics.Inc(MetricStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := a.limiter.ResetRefresh(ctx, userID); err != nil {
		log.Print("tokenward: refresh limiter reset failed after revocation")
	}

	a.metrics.Inc(MetricRevokeSession)
	a.emitAudit(ctx, AuditEvent{
		EventType: AuditSessionRevoked,
		UserID:    userID,
		Success:   true,
	})
	return nil
}

// RevokeAll revokes the identity's refresh token and additionally writes
// a time-windowed marker that invalidates every access token issued to
// the identity before now. The marker carries the revocation time, so
// verification rejects only tokens older than it; issuing a new pair
// afterward works immediately. The marker expires on its own.
func (a *Authority) RevokeAll(ctx context.Context, userID string) error {
	if a == nil {
		return ErrAuthorityNotReady
	}

	if err := a.RevokeSession(ctx, userID); err != nil {
		return err
	}

	sctx, cancel := a.storeCtx(ctx)
	defer cancel()

	marker := strconv.FormatInt(time.Now().Unix(), 10)
	window := a.config.Revocation.RevokedSessionWindow
	if err := a.store.PutTTL(sctx, a.revokedSessionKey(userID), marker, window); err != nil {
		a.metrics.Inc(MetricStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	a.metrics.Inc(MetricRevokeAll)
	a.emitAudit(ctx, AuditEvent{
		EventType: AuditSessionRevokeAll,
		UserID:    userID,
		Success:   true,
	})
	return nil
}

func (a *Authority) tokenJTI(token string) string {
	decoded, ok := a.codec.DecodeUnsafe(token)
	if !ok {
		return ""
	}
	return decoded.Claims.ID
}
