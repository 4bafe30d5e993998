package tokenward

import (
	"context"

	"github.com/MrEthical07/tokenward/jwt"
)

// Introspect decodes a token without verifying its signature and attaches
// a best-effort validity flag computed by running the full verification
// for the kind the token claims to be. It never returns an error and must
// never back an authorization decision; it exists for diagnostics and
// operator tooling.
func (a *Authority) Introspect(ctx context.Context, token string) Introspection {
	if a == nil {
		return Introspection{Error: ErrAuthorityNotReady.Error()}
	}

	decoded, ok := a.codec.DecodeUnsafe(token)
	if !ok {
		return Introspection{Error: ErrMalformed.Error()}
	}

	out := Introspection{
		Header: decoded.Header,
		Claims: claimsMap(decoded.Claims),
	}

	var err error
	if decoded.Claims.TokenType == string(jwt.KindRefresh) {
		_, err = a.VerifyRefresh(ctx, token)
	} else {
		_, err = a.VerifyAccess(ctx, token)
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Valid = true
	return out
}

func claimsMap(claims *jwt.Claims) map[string]any {
	out := map[string]any{
		"uid": claims.UserID,
		"typ": claims.TokenType,
		"iss": claims.Issuer,
		"jti": claims.ID,
	}
	if claims.Email != "" {
		out["email"] = claims.Email
	}
	if claims.Role != "" {
		out["role"] = claims.Role
	}
	if len(claims.Audience) > 0 {
		out["aud"] = []string(claims.Audience)
	}
	if claims.IssuedAt != nil {
		out["iat"] = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out["exp"] = claims.ExpiresAt.Unix()
	}
	return out
}
