package tokenward

import (
	"context"
	"testing"
)

func TestIntrospectValidAccessToken(t *testing.T) {
	authority, _, done := newTestAuthority(t, testConfig())
	defer done()

	ctx := context.Background()
	pair, err := authority.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	info := authority.Introspect(ctx, pair.AccessToken)
	if !info.Valid {
		t.Fatalf("expected valid introspection, got error %q", info.Error)
	}
	if info.Claims["uid"] != "u1" {
		t.Fatalf("expected uid claim, got %v", info.Claims["uid"])
	}
	if info.Claims["typ"] != "access" {
		t.Fatalf("expected access typ, got %v", info.Claims["typ"])
	}
	if info.Claims["iss"] != "tokenward-test" {
		t.Fatalf("expected issuer claim, got %v", info.Claims["iss"])
	}
	if info.Header["alg"] != "HS256" {
		t.Fatalf("expected HS256 header, got %v", info.Header["alg"])
	}
	if info.Claims["jti"] == "" {
		t.Fatal("expected a jti claim")
	}
}

func TestIntrospectRefreshTokenUsesRefreshPath(t *testing.T) {
	authority, _, done := newTestAuthority(t, testConfig())
	defer done()

	ctx := context.Background()
	pair, err := authority.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	info := authority.Introspect(ctx, pair.RefreshToken)
	if !info.Valid {
		t.Fatalf("expected valid refresh introspection, got error %q", info.Error)
	}
	if info.Claims["typ"] != "refresh" {
		t.Fatalf("expected refresh typ, got %v", info.Claims["typ"])
	}

	// Introspection is read-only; the token still rotates afterward.
	if _, err := authority.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Refresh after introspection failed: %v", err)
	}
}

func TestIntrospectBlacklistedToken(t *testing.T) {
	authority, _, done := newTestAuthority(t, testConfig())
	defer done()

	ctx := context.Background()
	pair, err := authority.Issue(ctx, testIdentity())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := authority.Blacklist(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Blacklist failed: %v", err)
	}

	info := authority.Introspect(ctx, pair.AccessToken)
	if info.Valid {
		t.Fatal("blacklisted token must not introspect as valid")
	}
	if info.Error != ErrBlacklisted.Error() {
		t.Fatalf("expected blacklisted error string, got %q", info.Error)
	}
	// Claims are still surfaced for diagnostics.
	if info.Claims["uid"] != "u1" {
		t.Fatalf("expected uid claim on invalid token, got %v", info.Claims["uid"])
	}
}

func TestIntrospectGarbage(t *testing.T) {
	authority, _, done := newTestAuthority(t, testConfig())
	defer done()

	info := authority.Introspect(context.Background(), "@@@@")
	if info.Valid {
		t.Fatal("garbage must not introspect as valid")
	}
	if info.Error != ErrMalformed.Error() {
		t.Fatalf("expected malformed error string, got %q", info.Error)
	}
	if info.Claims != nil || info.Header != nil {
		t.Fatal("garbage must not surface claims or header")
	}
}
