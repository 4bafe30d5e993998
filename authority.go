package tokenward

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/MrEthical07/tokenward/internal/rate"
	"github.com/MrEthical07/tokenward/jwt"
	"github.com/MrEthical07/tokenward/store"
)

// Authority issues, verifies, rotates, and revokes token pairs. It holds
// no locks and no mutable state of its own; every session decision lives
// in the credential store, so concurrent operations are independent
// unless they touch the same store key. Construct via [Builder.Build];
// all methods are safe for concurrent use afterward.
type Authority struct {
	codec      *jwt.Codec
	store      store.Store
	limiter    *rate.Limiter
	metrics    *Metrics
	dispatcher *auditDispatcher
	config     Config
}

// Close flushes and stops the audit dispatcher. The Authority must not be
// used after Close.
func (a *Authority) Close() {
	if a == nil {
		return
	}
	a.dispatcher.Close()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (a *Authority) MetricsSnapshot() MetricsSnapshot {
	if a == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}, Histograms: map[MetricID][]uint64{}}
	}
	return a.metrics.Snapshot()
}

// AuditDropped reports audit events dropped under dispatcher backpressure.
func (a *Authority) AuditDropped() uint64 {
	if a == nil {
		return 0
	}
	return a.dispatcher.Dropped()
}

// Issue signs a fresh token pair for identity and records the refresh
// token as the identity's single active one, overwriting any previous
// entry. It requires no prior state and fails only when signing fails or
// the store is unreachable.
func (a *Authority) Issue(ctx context.Context, identity Identity) (TokenPair, error) {
	if a == nil {
		return TokenPair{}, ErrAuthorityNotReady
	}

	role := identity.Role
	if role == "" {
		role = a.config.Tokens.DefaultRole
	}

	access, err := a.codec.Sign(identity.UserID, identity.Email, role, jwt.KindAccess)
	if err != nil {
		a.metrics.Inc(MetricIssueFailure)
		return TokenPair{}, err
	}
	refresh, err := a.codec.Sign(identity.UserID, identity.Email, role, jwt.KindRefresh)
	if err != nil {
		a.metrics.Inc(MetricIssueFailure)
		return TokenPair{}, err
	}

	sctx, cancel := a.storeCtx(ctx)
	defer cancel()

	if err := a.store.PutTTL(sctx, a.refreshKey(identity.UserID), refresh, a.config.Tokens.RefreshTTL); err != nil {
		a.metrics.Inc(MetricIssueFailure)
		a.metrics.Inc(MetricStoreUnavailable)
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	a.metrics.Inc(MetricIssueSuccess)
	a.emitAudit(ctx, AuditEvent{
		EventType: AuditTokenIssued,
		UserID:    identity.UserID,
		Success:   true,
	})

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token: signature, issuer, audience,
// and expiry first, then the blacklist, then the identity's coarse
// revoked-session marker. The marker check is the one place a
// syntactically valid, unexpired token is still rejected.
func (a *Authority) VerifyAccess(ctx context.Context, token string) (Identity, error) {
	if a == nil {
		return Identity{}, ErrAuthorityNotReady
	}

	start := time.Now()
	defer func() {
		a.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}()

	claims, err := a.codec.Verify(token, jwt.KindAccess)
	if err != nil {
		a.metrics.Inc(MetricAccessVerifyFailure)
		return Identity{}, a.mapCodecErr(err)
	}

	if err := a.revocationCheck(ctx, a.blacklistKey(token), ErrBlacklisted, claims.UserID); err != nil {
		if errors.Is(err, ErrBlacklisted) {
			a.metrics.Inc(MetricAccessBlacklisted)
		}
		a.metrics.Inc(MetricAccessVerifyFailure)
		return Identity{}, err
	}

	if err := a.sessionRevocationCheck(ctx, claims); err != nil {
		if errors.Is(err, ErrSessionRevoked) {
			a.metrics.Inc(MetricSessionRevokedHit)
		}
		a.metrics.Inc(MetricAccessVerifyFailure)
		return Identity{}, err
	}

	a.metrics.Inc(MetricAccessVerifySuccess)
	return identityFromClaims(claims), nil
}

// VerifyRefresh validates a refresh token without mutating store state:
// signature and kind, then the blacklist, then equality with the
// identity's stored refresh token. Only [Authority.Refresh] consumes the
// token; keeping verification read-only is what lets concurrent rotations
// race safely on the store's conditional delete.
func (a *Authority) VerifyRefresh(ctx context.Context, token string) (Identity, error) {
	if a == nil {
		return Identity{}, ErrAuthorityNotReady
	}

	claims, err := a.verifyRefreshClaims(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	return identityFromClaims(claims), nil
}

func (a *Authority) verifyRefreshClaims(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := a.codec.Verify(token, jwt.KindRefresh)
	if err != nil {
		return nil, a.mapCodecErr(err)
	}

	if err := a.revocationCheck(ctx, a.blacklistKey(token), ErrBlacklisted, claims.UserID); err != nil {
		return nil, err
	}

	sctx, cancel := a.storeCtx(ctx)
	defer cancel()

	current, err := a.store.Get(sctx, a.refreshKey(claims.UserID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRefreshReused
		}
		a.metrics.Inc(MetricStoreUnavailable)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if current != token {
		return nil, ErrRefreshReused
	}

	return claims, nil
}

// Refresh rotates a refresh token: it validates the old token, consumes
// it with a single conditional delete, blacklists it, and issues a fresh
// pair. Under concurrent presentation of the same token exactly one call
// wins the conditional delete; the rest observe ErrRefreshReused or
// ErrBlacklisted.
func (a *Authority) Refresh(ctx context.Context, oldToken string) (TokenPair, error) {
	if a == nil {
		return TokenPair{}, ErrAuthorityNotReady
	}

	claims, err := a.codec.Verify(oldToken, jwt.KindRefresh)
	if err != nil {
		a.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, a.mapCodecErr(err)
	}

	if err := a.limiter.CheckRefresh(ctx, claims.UserID); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			a.metrics.Inc(MetricRefreshRateLimited)
			a.metrics.Inc(MetricRefreshFailure)
			return TokenPair{}, ErrRefreshRateLimited
		}
		a.metrics.Inc(MetricStoreUnavailable)
		a.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := a.revocationCheck(ctx, a.blacklistKey(oldToken), ErrBlacklisted, claims.UserID); err != nil {
		a.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, err
	}

	// The conditional delete is the rotation decider: it consumes the old
	// token only if it is still the identity's current one, in one store
	// round trip, so no two rotations of the same token can both proceed.
	sctx, cancel := a.storeCtx(ctx)
	deleted, err := a.store.CompareAndDelete(sctx, a.refreshKey(claims.UserID), oldToken)
	cancel()
	if err != nil {
		a.metrics.Inc(MetricStoreUnavailable)
		a.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !deleted {
		a.metrics.Inc(MetricRefreshReuseDetected)
		a.metrics.Inc(MetricRefreshFailure)
		a.emitAudit(ctx, AuditEvent{
			EventType: AuditRefreshReuse,
			UserID:    claims.UserID,
			JTI:       claims.ID,
			Success:   false,
			Error:     ErrRefreshReused.Error(),
		})
		return TokenPair{}, ErrRefreshReused
	}

	// The old token is already consumed; blacklisting it is a second
	// barrier for the losers of the race. A write failure here cannot
	// resurrect the token, so it is logged rather than fatal.
	if err := a.Blacklist(ctx, oldToken); err != nil {
		log.Print("tokenward: blacklist of rotated refresh token failed")
	}

	pair, err := a.Issue(ctx, identityFromClaims(claims))
	if err != nil {
		a.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, err
	}

	a.metrics.Inc(MetricRefreshSuccess)
	a.emitAudit(ctx, AuditEvent{
		EventType: AuditTokenRefreshed,
		UserID:    claims.UserID,
		JTI:       claims.ID,
		Success:   true,
	})

	return pair, nil
}

// revocationCheck tests a blacklist key and applies the deployment's
// fail-open/fail-closed policy when the store cannot be reached.
// deniedErr is returned when the marker is present.
func (a *Authority) revocationCheck(ctx context.Context, key string, deniedErr error, userID string) error {
	sctx, cancel := a.storeCtx(ctx)
	defer cancel()

	present, err := a.store.Exists(sctx, key)
	if err != nil {
		return a.storeFailPolicy(ctx, userID, err)
	}
	if present {
		return deniedErr
	}
	return nil
}

// sessionRevocationCheck rejects an access token when the identity
// carries a revoked-session marker newer than the token. Tokens issued
// at or after the marker's timestamp pass, so a revoke-all never locks
// the identity out of fresh credentials.
func (a *Authority) sessionRevocationCheck(ctx context.Context, claims *jwt.Claims) error {
	sctx, cancel := a.storeCtx(ctx)
	defer cancel()

	marker, err := a.store.Get(sctx, a.revokedSessionKey(claims.UserID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return a.storeFailPolicy(ctx, claims.UserID, err)
	}

	revokedAt, err := strconv.ParseInt(marker, 10, 64)
	if err != nil {
		// An unreadable marker still means someone asked for revocation.
		return ErrSessionRevoked
	}
	if claims.IssuedAt == nil || claims.IssuedAt.Unix() < revokedAt {
		return ErrSessionRevoked
	}
	return nil
}

// storeFailPolicy resolves a failed revocation-check round trip into
// either acceptance (fail-open deployments) or ErrStoreUnavailable.
func (a *Authority) storeFailPolicy(ctx context.Context, userID string, err error) error {
	a.metrics.Inc(MetricStoreUnavailable)
	if a.config.Revocation.FailOpenOnStoreError {
		a.metrics.Inc(MetricFailOpenAccepted)
		a.emitAudit(ctx, AuditEvent{
			EventType: AuditFailOpenAccept,
			UserID:    userID,
			Success:   true,
			Error:     err.Error(),
		})
		log.Print("tokenward: revocation check failed open")
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func (a *Authority) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.config.Store.OpTimeout)
}

func (a *Authority) emitAudit(ctx context.Context, event AuditEvent) {
	if a.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	a.dispatcher.Emit(ctx, event)
}

// mapCodecErr translates codec sentinels into the authority taxonomy.
func (a *Authority) mapCodecErr(err error) error {
	switch {
	case errors.Is(err, jwt.ErrMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrWrongType):
		return ErrWrongTokenType
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrSignatureInvalid
	default:
		return err
	}
}

func identityFromClaims(claims *jwt.Claims) Identity {
	return Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
}
