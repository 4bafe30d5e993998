// Package jwt signs and verifies the compact signed credentials issued by
// the token authority, with strict issuer, audience, and expiry validation
// and a distinct failure taxonomy that the authority maps onto its
// caller-visible errors.
package jwt
