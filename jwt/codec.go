package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates the two credential kinds carried in the "typ" claim.
type Kind string

const (
	// KindAccess marks short-lived request credentials.
	KindAccess Kind = "access"
	// KindRefresh marks long-lived rotation credentials.
	KindRefresh Kind = "refresh"
)

var (
	// ErrMalformed is returned when a token cannot be parsed at all.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid is returned on signature mismatch, tampering, or
	// an issuer/audience the deployment does not accept.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired is returned when the token's exp claim is in the past.
	ErrExpired = errors.New("token expired")
	// ErrWrongType is returned when the "typ" claim does not match the
	// kind the caller asked to verify.
	ErrWrongType = errors.New("wrong token type")
)

// Config holds the signing material and validation parameters for a
// deployment. Access and refresh credentials use distinct secrets so a
// leaked access secret cannot mint refresh tokens.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Claims is the payload carried inside both token kinds: the caller's
// identity fields plus the registered claims and the kind discriminator.
type Claims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UnverifiedToken is the result of [Codec.DecodeUnsafe]: parsed header and
// claims with no signature check. Diagnostics only, never authorization.
type UnverifiedToken struct {
	Header map[string]any
	Claims *Claims
}

// Codec signs and verifies tokens for one deployment. Safe for concurrent
// use; the configuration is immutable after construction.
type Codec struct {
	config Config
}

// NewCodec validates the configuration and returns a ready [Codec].
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwt: both signing secrets are required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("jwt: invalid leeway configuration")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("jwt: issuer and audience are required")
	}
	return &Codec{config: cfg}, nil
}

// Sign produces a signed token of the given kind carrying the identity
// fields, issuer, audience, issued-at, a kind-dependent expiry, and a
// fresh random jti.
func (c *Codec) Sign(userID, email, role string, kind Kind) (string, error) {
	secret, ttl, err := c.kindParams(kind)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			Audience:  jwt.ClaimStrings{c.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks the signature, issuer, audience, and expiry of token
// against the secret for kind, then checks the kind discriminator.
// Failures are classified into [ErrMalformed], [ErrSignatureInvalid],
// [ErrExpired], and [ErrWrongType].
func (c *Codec) Verify(token string, kind Kind) (*Claims, error) {
	secret, _, err := c.kindParams(kind)
	if err != nil {
		return nil, err
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithAudience(c.config.Audience),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrSignatureInvalid
	}
	if claims.TokenType != string(kind) {
		return nil, ErrWrongType
	}

	return claims, nil
}

// DecodeUnsafe parses token without verifying the signature. The second
// return is false when the token cannot be parsed at all.
func (c *Codec) DecodeUnsafe(token string) (*UnverifiedToken, bool) {
	claims := &Claims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, false
	}
	return &UnverifiedToken{Header: parsed.Header, Claims: claims}, true
}

func (c *Codec) kindParams(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return c.config.AccessSecret, c.config.AccessTTL, nil
	case KindRefresh:
		return c.config.RefreshSecret, c.config.RefreshTTL, nil
	default:
		return nil, 0, errors.New("jwt: unknown token kind")
	}
}

// classifyParseError collapses jwt/v5's joined validation errors into the
// codec taxonomy. Expiry wins over other claim failures so callers see a
// stable kind for the common case; issuer/audience mismatches count as
// signature-level rejection because the token was minted for a different
// deployment.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	default:
		return ErrSignatureInvalid
	}
}
