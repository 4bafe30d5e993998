package tokenward

import (
	"errors"
	"time"
)

// Config is the full configuration surface of the token authority. Zero
// values are filled from [DefaultConfig] where a safe default exists;
// signing secrets, issuer, and audience must always be supplied by the
// embedding service.
type Config struct {
	Tokens     TokenConfig
	Store      StoreConfig
	Revocation RevocationConfig
	RateLimit  RateLimitConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig holds signing material and token lifetimes.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
	Leeway        time.Duration

	// DefaultRole is applied when an Identity is issued without a role.
	DefaultRole string
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig controls the credential-store key layout and call bounds.
type StoreConfig struct {
	// Prefix namespaces every key the authority writes.
	Prefix string

	// OpTimeout bounds each store round trip. A timeout surfaces as
	// ErrStoreUnavailable, never as a definitive rejection.
	OpTimeout time.Duration
}

/*
====================================
REVOCATION CONFIG
====================================
*/

// RevocationConfig controls blacklist and coarse-revocation behavior.
type RevocationConfig struct {
	// BlacklistTTLFloor is the minimum lifetime of a blacklist entry.
	// Entries live for the token's remaining lifetime or this floor,
	// whichever is longer, so minor clock drift cannot resurrect a
	// revoked token.
	BlacklistTTLFloor time.Duration

	// RevokedSessionWindow is how long a revoke-all marker invalidates
	// the identity's previously issued access tokens.
	RevokedSessionWindow time.Duration

	// FailOpenOnStoreError is the deployment-wide policy for blacklist and
	// revoked-session checks when the store is unreachable: false (the
	// production default) rejects the request with ErrStoreUnavailable;
	// true accepts the token and records the acceptance in metrics and
	// audit. Never leave this true outside non-production environments.
	FailOpenOnStoreError bool
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig tunes the optional per-identity refresh throttle.
// Throttling needs a Redis client and is rejected by Build when the
// authority is backed by a custom store.
type RateLimitConfig struct {
	EnableRefreshThrottle   bool
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters and latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production defaults: 15-minute access tokens,
// 7-day refresh tokens, a 1-hour blacklist floor, a 24-hour revocation
// window, fail-closed store policy, and metrics enabled.
func DefaultConfig() Config {
	return Config{
		Tokens: TokenConfig{
			AccessTTL:   15 * time.Minute,
			RefreshTTL:  7 * 24 * time.Hour,
			Leeway:      30 * time.Second,
			DefaultRole: "user",
		},
		Store: StoreConfig{
			Prefix:    "tw",
			OpTimeout: 2 * time.Second,
		},
		Revocation: RevocationConfig{
			BlacklistTTLFloor:    time.Hour,
			RevokedSessionWindow: 24 * time.Hour,
			FailOpenOnStoreError: false,
		},
		RateLimit: RateLimitConfig{
			EnableRefreshThrottle:   false,
			MaxRefreshAttempts:      30,
			RefreshCooldownDuration: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Tokens.AccessSecret = append([]byte(nil), cfg.Tokens.AccessSecret...)
	out.Tokens.RefreshSecret = append([]byte(nil), cfg.Tokens.RefreshSecret...)
	return out
}

func (c *Config) validate() error {
	if len(c.Tokens.AccessSecret) == 0 || len(c.Tokens.RefreshSecret) == 0 {
		return errors.New("tokenward: access and refresh secrets are required")
	}
	if string(c.Tokens.AccessSecret) == string(c.Tokens.RefreshSecret) {
		return errors.New("tokenward: access and refresh secrets must differ")
	}
	if c.Tokens.Issuer == "" || c.Tokens.Audience == "" {
		return errors.New("tokenward: issuer and audience are required")
	}
	if c.Tokens.AccessTTL <= 0 || c.Tokens.RefreshTTL <= 0 {
		return errors.New("tokenward: token TTLs must be positive")
	}
	if c.Tokens.AccessTTL >= c.Tokens.RefreshTTL {
		return errors.New("tokenward: access TTL must be shorter than refresh TTL")
	}
	if c.Store.Prefix == "" {
		return errors.New("tokenward: store prefix is required")
	}
	if c.Store.OpTimeout <= 0 {
		return errors.New("tokenward: store operation timeout must be positive")
	}
	if c.Revocation.BlacklistTTLFloor <= 0 {
		return errors.New("tokenward: blacklist TTL floor must be positive")
	}
	if c.Revocation.RevokedSessionWindow <= 0 {
		return errors.New("tokenward: revoked-session window must be positive")
	}
	if c.RateLimit.EnableRefreshThrottle {
		if c.RateLimit.MaxRefreshAttempts <= 0 {
			return errors.New("tokenward: refresh throttle needs a positive attempt budget")
		}
		if c.RateLimit.RefreshCooldownDuration <= 0 {
			return errors.New("tokenward: refresh throttle needs a positive cooldown")
		}
	}
	return nil
}
