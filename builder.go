package tokenward

import (
	"errors"

	"github.com/MrEthical07/tokenward/internal/rate"
	"github.com/MrEthical07/tokenward/jwt"
	"github.com/MrEthical07/tokenward/store"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Authority] from explicit dependencies. The store
// is always chosen by the composing layer: pass a Redis client for
// production or any [store.Store] (typically [store.NewMemoryStore]) for
// tests; the Authority itself never inspects the environment.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	store     store.Store
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration. Secrets are copied so
// later caller mutation cannot affect the built Authority.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the Authority with a Redis credential store. Also
// enables the refresh throttle when the configuration asks for one.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore backs the Authority with a caller-supplied store. Takes
// precedence over WithRedis for credential storage.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithAuditSink sets the sink that receives audit events when auditing is
// enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires the codec, store, limiter,
// metrics, and audit dispatcher, and returns the ready Authority. A
// Builder builds at most once.
func (b *Builder) Build() (*Authority, error) {
	if b.built {
		return nil, errors.New("tokenward: builder already used")
	}

	if err := b.config.validate(); err != nil {
		return nil, err
	}

	credStore := b.store
	if credStore == nil {
		if b.redis == nil {
			return nil, errors.New("tokenward: a store or redis client is required")
		}
		credStore = store.NewRedisStore(b.redis)
	}

	var limiter *rate.Limiter
	if b.config.RateLimit.EnableRefreshThrottle {
		if b.redis == nil {
			return nil, errors.New("tokenward: refresh throttle requires a redis client")
		}
		limiter = rate.New(b.redis, rate.Config{
			EnableRefreshThrottle:   true,
			MaxRefreshAttempts:      b.config.RateLimit.MaxRefreshAttempts,
			RefreshCooldownDuration: b.config.RateLimit.RefreshCooldownDuration,
		})
	}

	codec, err := jwt.NewCodec(jwt.Config{
		AccessSecret:  b.config.Tokens.AccessSecret,
		RefreshSecret: b.config.Tokens.RefreshSecret,
		AccessTTL:     b.config.Tokens.AccessTTL,
		RefreshTTL:    b.config.Tokens.RefreshTTL,
		Issuer:        b.config.Tokens.Issuer,
		Audience:      b.config.Tokens.Audience,
		Leeway:        b.config.Tokens.Leeway,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Authority{
		codec:      codec,
		store:      credStore,
		limiter:    limiter,
		metrics:    NewMetrics(b.config.Metrics),
		dispatcher: newAuditDispatcher(b.config.Audit, b.auditSink),
		config:     b.config,
	}, nil
}
