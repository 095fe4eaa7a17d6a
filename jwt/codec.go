package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token families. A refresh token can never be
// used where an access token is expected, and vice versa.
type Kind string

const (
	// KindAccess is the short-lived per-request token kind.
	KindAccess Kind = "access"
	// KindRefresh is the long-lived token kind accepted only by the
	// refresh flow.
	KindRefresh Kind = "refresh"
)

// refreshMarker is the wire value of the tokenType claim on refresh tokens.
// Access tokens omit the claim entirely.
const refreshMarker = "refresh"

const minSecretBytes = 32

// Config carries the signing key and the per-kind TTL defaults. Values are
// loaded once at process start and never mutated afterwards.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// Claims is the decoded payload of a verified token. It is only ever
// constructed from a token whose signature already passed verification.
type Claims struct {
	TokenType string `json:"tokenType,omitempty"`
	jwt.RegisteredClaims
}

// Kind reports the token family the claims belong to.
func (c *Claims) Kind() Kind {
	if c != nil && c.TokenType == refreshMarker {
		return KindRefresh
	}
	return KindAccess
}

// Codec signs and verifies session tokens with a single shared HMAC key.
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates the configuration and returns a ready Codec.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid access TTL configuration")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid refresh TTL configuration")
	}
	return &Codec{config: cfg}, nil
}

// Issue builds a claim set for subject, stamps issuedAt = now and
// expiresAt = now + ttl, and returns the signed compact encoding. The ttl is
// taken as given; [Codec.IssueAccess] and [Codec.IssueRefresh] apply the
// configured defaults.
func (c *Codec) Issue(subject string, kind Kind, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	if kind != KindAccess && kind != KindRefresh {
		return "", errors.New("unknown token kind")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if c.config.Issuer != "" {
		claims.Issuer = c.config.Issuer
	}
	if kind == KindRefresh {
		claims.TokenType = refreshMarker
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// IssueAccess issues an access token with the configured access TTL.
func (c *Codec) IssueAccess(subject string) (string, error) {
	return c.Issue(subject, KindAccess, c.config.AccessTTL)
}

// IssueRefresh issues a refresh token with the configured refresh TTL.
func (c *Codec) IssueRefresh(subject string) (string, error) {
	return c.Issue(subject, KindRefresh, c.config.RefreshTTL)
}

// VerifyAndDecode verifies signature, expiry, and kind, in that order, and
// returns the decoded claims. Failures are one of [ErrMalformed],
// [ErrBadSignature], [ErrExpired], or [ErrWrongKind].
func (c *Codec) VerifyAndDecode(tokenStr string, expected Kind) (*Claims, error) {
	claims, err := c.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind() != expected {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// Subject returns the subject of a signature-verified, unexpired token
// without checking its kind. The refresh flow uses it to look up the account
// before re-verifying the kind explicitly; nothing else should call it.
func (c *Codec) Subject(tokenStr string) (string, error) {
	claims, err := c.parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// parse verifies the signature before any claim validation runs. The parser
// rejects every algorithm except HS256, so an attacker cannot downgrade to
// alg=none or swap in an asymmetric method.
func (c *Codec) parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		// Unverifiable tokens (unexpected alg, bad key material) are
		// treated identically to tampering.
		return ErrBadSignature
	}
}
