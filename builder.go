package blogauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/blogapp/blogauth/internal/rate"
	"github.com/blogapp/blogauth/jwt"
	"github.com/blogapp/blogauth/password"
)

// Builder assembles an [Engine]. Collaborators not supplied fall back to
// defaults where one exists; the account store has no default and is
// required. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  AccountStore
	hasher SecretHasher
	sink   AuditSink
	built  bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets the token signing key without replacing the rest of the
// configuration.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithRedis supplies the Redis client backing the login/refresh throttles.
// Required when rate limiting is enabled, ignored otherwise.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountStore supplies the persistence collaborator. Required.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.store = store
	return b
}

// WithSecretHasher overrides the default argon2id hasher.
func (b *Builder) WithSecretHasher(h SecretHasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink supplies the audit event consumer. Without one, audit
// events are discarded.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// Build validates the configuration, wires the collaborators, and returns
// the immutable engine. The audit dispatcher goroutine starts here; call
// [Engine.Close] to stop it.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("account store is required")
	}

	codec, err := jwt.NewCodec(jwt.Config{
		Secret:     b.config.Token.Secret,
		AccessTTL:  b.config.Token.AccessTTL,
		RefreshTTL: b.config.Token.RefreshTTL,
		Issuer:     b.config.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	hasher := b.hasher
	if hasher == nil {
		hasher, err = password.NewHasher(password.Params{
			Memory:      b.config.Password.Memory,
			Time:        b.config.Password.Time,
			Parallelism: b.config.Password.Parallelism,
			SaltLength:  b.config.Password.SaltLength,
			KeyLength:   b.config.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
	}

	var limiter *rate.Limiter
	if b.config.RateLimit.Enabled {
		if b.redis == nil {
			return nil, errors.New("rate limiting requires a redis client")
		}
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:   b.config.RateLimit.EnableIPThrottle,
			MaxLoginAttempts:   b.config.RateLimit.MaxLoginAttempts,
			LoginCooldown:      b.config.RateLimit.LoginCooldown,
			MaxRefreshAttempts: b.config.RateLimit.MaxRefreshAttempts,
			RefreshCooldown:    b.config.RateLimit.RefreshCooldown,
		})
	}

	return &Engine{
		config:  b.config,
		codec:   codec,
		hasher:  hasher,
		store:   b.store,
		limiter: limiter,
		audit:   newAuditDispatcher(b.config.Audit, b.sink),
		metrics: NewMetrics(b.config.Metrics),
	}, nil
}
