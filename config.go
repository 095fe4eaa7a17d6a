package blogauth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the engine's load-once configuration. Values are environment-
// injected in deployments (see [FromEnv]) and treated as immutable after
// [Builder.Build].
type Config struct {
	Token     TokenConfig
	Password  PasswordConfig
	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig

	// PublicPathPrefixes lists fully public path prefixes (login,
	// registration, refresh, health checks) that skip request
	// authentication entirely; a token cannot be required to obtain a
	// token.
	PublicPathPrefixes []string
}

// TokenConfig carries the signing key material and per-kind TTLs.
type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// PasswordConfig tunes the argon2id cost used for account secrets.
type PasswordConfig struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// RateLimitConfig tunes the Redis-backed login/refresh throttles. When
// Enabled is false the engine runs without throttling and without Redis.
type RateLimitConfig struct {
	Enabled            bool
	EnableIPThrottle   bool
	MaxLoginAttempts   int
	LoginCooldown      time.Duration
	MaxRefreshAttempts int
	RefreshCooldown    time.Duration
}

// AuditConfig tunes the buffered audit event pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: 1 hour access tokens,
// 7 day refresh tokens, and the blog API's public route prefixes.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "blogauth",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		RateLimit: RateLimitConfig{
			Enabled:            false,
			EnableIPThrottle:   true,
			MaxLoginAttempts:   5,
			LoginCooldown:      15 * time.Minute,
			MaxRefreshAttempts: 30,
			RefreshCooldown:    time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
		PublicPathPrefixes: []string{
			"/api/auth/",
			"/api/public/",
			"/actuator/health",
		},
	}
}

// FromEnv builds a Config from the environment on top of [DefaultConfig].
//
//	BLOGAUTH_JWT_SECRET       signing key (required, >= 32 bytes)
//	BLOGAUTH_ACCESS_TTL       access token TTL in seconds
//	BLOGAUTH_REFRESH_TTL      refresh token TTL in seconds
//	BLOGAUTH_ISSUER           issuer claim
//	BLOGAUTH_PUBLIC_PREFIXES  comma-separated public path prefixes
//	BLOGAUTH_RATE_LIMIT       "true" enables Redis-backed throttling
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	secret := os.Getenv("BLOGAUTH_JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("BLOGAUTH_JWT_SECRET is required")
	}
	cfg.Token.Secret = []byte(secret)

	if v := os.Getenv("BLOGAUTH_ACCESS_TTL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid BLOGAUTH_ACCESS_TTL %q", v)
		}
		cfg.Token.AccessTTL = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("BLOGAUTH_REFRESH_TTL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid BLOGAUTH_REFRESH_TTL %q", v)
		}
		cfg.Token.RefreshTTL = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("BLOGAUTH_ISSUER"); v != "" {
		cfg.Token.Issuer = v
	}
	if v := os.Getenv("BLOGAUTH_PUBLIC_PREFIXES"); v != "" {
		var prefixes []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				prefixes = append(prefixes, p)
			}
		}
		cfg.PublicPathPrefixes = prefixes
	}
	if v := os.Getenv("BLOGAUTH_RATE_LIMIT"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BLOGAUTH_RATE_LIMIT %q", v)
		}
		cfg.RateLimit.Enabled = enabled
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if len(cfg.Token.Secret) < 32 {
		return errors.New("token secret must be at least 32 bytes")
	}
	if cfg.Token.AccessTTL <= 0 || cfg.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if cfg.Token.RefreshTTL < cfg.Token.AccessTTL {
		return errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.MaxLoginAttempts < 1 || cfg.RateLimit.LoginCooldown <= 0 {
			return errors.New("invalid login rate limit configuration")
		}
		if cfg.RateLimit.MaxRefreshAttempts < 1 || cfg.RateLimit.RefreshCooldown <= 0 {
			return errors.New("invalid refresh rate limit configuration")
		}
	}
	return nil
}
