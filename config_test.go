package blogauth

import (
	"testing"
	"time"
)

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("BLOGAUTH_JWT_SECRET", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error without BLOGAUTH_JWT_SECRET")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BLOGAUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("BLOGAUTH_ACCESS_TTL", "900")
	t.Setenv("BLOGAUTH_REFRESH_TTL", "86400")
	t.Setenv("BLOGAUTH_ISSUER", "blog-prod")
	t.Setenv("BLOGAUTH_PUBLIC_PREFIXES", "/api/auth/, /healthz")
	t.Setenv("BLOGAUTH_RATE_LIMIT", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Token.AccessTTL != 15*time.Minute {
		t.Fatalf("access TTL = %v, want 15m", cfg.Token.AccessTTL)
	}
	if cfg.Token.RefreshTTL != 24*time.Hour {
		t.Fatalf("refresh TTL = %v, want 24h", cfg.Token.RefreshTTL)
	}
	if cfg.Token.Issuer != "blog-prod" {
		t.Fatalf("issuer = %q", cfg.Token.Issuer)
	}
	if len(cfg.PublicPathPrefixes) != 2 || cfg.PublicPathPrefixes[1] != "/healthz" {
		t.Fatalf("prefixes = %v", cfg.PublicPathPrefixes)
	}
	if !cfg.RateLimit.Enabled {
		t.Fatal("rate limit not enabled")
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("BLOGAUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	t.Setenv("BLOGAUTH_ACCESS_TTL", "not-a-number")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for bad access TTL")
	}
	t.Setenv("BLOGAUTH_ACCESS_TTL", "-5")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for negative access TTL")
	}
}

func TestValidateConfig(t *testing.T) {
	base := DefaultConfig()
	base.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	if err := validateConfig(base); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	short := base
	short.Token.Secret = []byte("short")
	if err := validateConfig(short); err == nil {
		t.Fatal("short secret accepted")
	}

	inverted := base
	inverted.Token.AccessTTL = 2 * time.Hour
	inverted.Token.RefreshTTL = time.Hour
	if err := validateConfig(inverted); err == nil {
		t.Fatal("refresh TTL shorter than access TTL accepted")
	}

	badLimit := base
	badLimit.RateLimit.Enabled = true
	badLimit.RateLimit.MaxLoginAttempts = 0
	if err := validateConfig(badLimit); err == nil {
		t.Fatal("zero login attempts accepted with throttling on")
	}
}
