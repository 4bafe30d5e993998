package tokenward

import (
	"crypto/sha256"
	"encoding/base64"
)

// Key layout, all under the configured prefix:
//
//	<prefix>:refresh:<userID>          current active refresh token
//	<prefix>:blacklist:<sha256(tok)>   revocation marker for one token
//	<prefix>:revoked-session:<userID>  coarse revocation marker
//
// Blacklist keys hash the token so key size stays fixed regardless of
// token length; the marker's presence is all that matters.

func (a *Authority) refreshKey(userID string) string {
	return a.config.Store.Prefix + ":refresh:" + userID
}

func (a *Authority) blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return a.config.Store.Prefix + ":blacklist:" + base64.RawURLEncoding.EncodeToString(sum[:])
}

func (a *Authority) revokedSessionKey(userID string) string {
	return a.config.Store.Prefix + ":revoked-session:" + userID
}
