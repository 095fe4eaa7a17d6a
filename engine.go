package blogauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/blogapp/blogauth/internal/rate"
	"github.com/blogapp/blogauth/jwt"
)

// Engine orchestrates the authentication core: credential login, account
// registration, token refresh, and per-request authentication. Build one
// through [Builder.Build]; it is immutable and safe for concurrent use
// afterwards.
type Engine struct {
	config  Config
	codec   *jwt.Codec
	hasher  SecretHasher
	store   AccountStore
	limiter *rate.Limiter
	audit   *auditDispatcher
	metrics *Metrics
}

// Close flushes and stops the audit pipeline.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped by a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// PublicPathPrefixes returns the configured fully public path prefixes.
func (e *Engine) PublicPathPrefixes() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.config.PublicPathPrefixes))
	copy(out, e.config.PublicPathPrefixes)
	return out
}

func (e *Engine) ready() bool {
	return e != nil && e.codec != nil && e.hasher != nil && e.store != nil
}

// Login authenticates raw credentials and issues a fresh access+refresh
// token pair. Every caller-visible failure except throttling is
// [ErrInvalidCredentials]; whether the identifier was unknown, the secret
// wrong, or the account disabled is recorded only in the audit stream.
func (e *Engine) Login(ctx context.Context, identifier, secret string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	ip := clientIPFromContext(ctx)

	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, identifier, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metrics.Inc(MetricLoginRateLimited)
				e.emit(ctx, AuditEvent{
					EventType: EventLoginRateLimited,
					IP:        ip,
					Error:     ErrLoginRateLimited.Error(),
					Metadata:  map[string]string{"identifier": identifier},
				})
				return TokenPair{}, ErrLoginRateLimited
			}
			// Throttle infrastructure failure must not lock out logins.
			log.Print("blogauth: login throttle check failed")
		}
	}

	id, err := e.ResolveCredentials(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountDisabled) {
			e.metrics.Inc(MetricLoginFailure)
			e.recordLoginFailure(ctx, identifier, ip)
			e.emit(ctx, AuditEvent{
				EventType: EventLoginFailure,
				IP:        ip,
				Error:     err.Error(),
				Metadata:  map[string]string{"identifier": identifier},
			})
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	if e.limiter != nil {
		if err := e.limiter.ResetLogin(ctx, identifier, ip); err != nil {
			log.Print("blogauth: login throttle reset failed")
		}
	}

	pair, err := e.issuePair(id.PrincipalID)
	if err != nil {
		return TokenPair{}, err
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emit(ctx, AuditEvent{
		EventType:   EventLoginSuccess,
		PrincipalID: id.PrincipalID,
		IP:          ip,
		Success:     true,
	})

	return pair, nil
}

// Register creates an account with the default USER capability unless roles
// are given, and returns its identity. The identifier must be unused.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (Identity, error) {
	if !e.ready() {
		return Identity{}, ErrEngineNotReady
	}
	if input.Identifier == "" {
		return Identity{}, errors.New("identifier is required")
	}

	hash, err := e.hasher.Hash(input.Secret)
	if err != nil {
		return Identity{}, err
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []string{"USER"}
	}

	rec, err := e.store.Create(ctx, CreateAccountInput{
		PrincipalID:  uuid.NewString(),
		Identifier:   input.Identifier,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		Roles:        roles,
	})
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			e.metrics.Inc(MetricRegisterDuplicate)
			e.emit(ctx, AuditEvent{
				EventType: EventRegisterDuplicate,
				IP:        clientIPFromContext(ctx),
				Error:     err.Error(),
				Metadata:  map[string]string{"identifier": input.Identifier},
			})
			return Identity{}, ErrAccountExists
		}
		return Identity{}, fmt.Errorf("create account: %w", err)
	}

	e.metrics.Inc(MetricRegisterSuccess)
	e.emit(ctx, AuditEvent{
		EventType:   EventRegisterSuccess,
		PrincipalID: rec.PrincipalID,
		IP:          clientIPFromContext(ctx),
		Success:     true,
	})

	return identityFromRecord(rec), nil
}

// Refresh exchanges a valid refresh token for a brand-new access+refresh
// pair. Tokens are immutable; nothing is ever extended in place. The subject
// is extracted from the signature-verified token first so the account (and
// its current enabled state) is re-checked before the kind claim is
// enforced. Every failure collapses to [ErrTokenInvalid].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	subject, err := e.codec.Subject(refreshToken)
	if err != nil {
		return TokenPair{}, e.refreshFailure(ctx, "", err)
	}

	if e.limiter != nil {
		if err := e.limiter.CheckRefresh(ctx, subject); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return TokenPair{}, ErrRefreshRateLimited
			}
			log.Print("blogauth: refresh throttle check failed")
		}
	}

	id, err := e.ResolveSubject(ctx, subject)
	if err != nil {
		return TokenPair{}, e.refreshFailure(ctx, subject, err)
	}
	if !id.Enabled {
		return TokenPair{}, e.refreshFailure(ctx, subject, ErrAccountDisabled)
	}

	if _, err := e.codec.VerifyAndDecode(refreshToken, jwt.KindRefresh); err != nil {
		return TokenPair{}, e.refreshFailure(ctx, subject, err)
	}

	pair, err := e.issuePair(id.PrincipalID)
	if err != nil {
		return TokenPair{}, err
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.emit(ctx, AuditEvent{
		EventType:   EventRefreshSuccess,
		PrincipalID: id.PrincipalID,
		IP:          clientIPFromContext(ctx),
		Success:     true,
	})

	return pair, nil
}

// Authenticate is the request-time path: verify the access token, resolve
// its subject to a live account, and re-check enablement. The path is used
// only for diagnostics. Every failure is [ErrUnauthenticated]; the caller
// learns nothing about the cause.
func (e *Engine) Authenticate(ctx context.Context, rawToken, path string) (Identity, error) {
	if !e.ready() {
		return Identity{}, ErrEngineNotReady
	}

	claims, err := e.codec.VerifyAndDecode(rawToken, jwt.KindAccess)
	if err != nil {
		e.metrics.Inc(MetricTokenRejected)
		log.Printf("blogauth: rejected token on %s", path)
		e.emit(ctx, AuditEvent{
			EventType: EventTokenRejected,
			IP:        clientIPFromContext(ctx),
			Path:      path,
			Error:     err.Error(),
		})
		return Identity{}, ErrUnauthenticated
	}

	id, err := e.ResolveSubject(ctx, claims.Subject)
	if err == nil && !id.Enabled {
		err = ErrAccountDisabled
	}
	if err != nil {
		// A cryptographically valid token does not authenticate a
		// deleted or disabled account.
		e.metrics.Inc(MetricIdentityRejected)
		log.Printf("blogauth: rejected token on %s", path)
		e.emit(ctx, AuditEvent{
			EventType:   EventTokenRejected,
			PrincipalID: claims.Subject,
			IP:          clientIPFromContext(ctx),
			Path:        path,
			Error:       err.Error(),
		})
		return Identity{}, ErrUnauthenticated
	}

	e.metrics.Inc(MetricIdentityResolved)
	return id, nil
}

func (e *Engine) issuePair(subject string) (TokenPair, error) {
	access, err := e.codec.IssueAccess(subject)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := e.codec.IssueRefresh(subject)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

func (e *Engine) recordLoginFailure(ctx context.Context, identifier, ip string) {
	if e.limiter == nil {
		return
	}
	if err := e.limiter.RecordLoginFailure(ctx, identifier, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
		log.Print("blogauth: login throttle increment failed")
	}
}

func (e *Engine) refreshFailure(ctx context.Context, subject string, cause error) error {
	e.metrics.Inc(MetricRefreshFailure)
	e.emit(ctx, AuditEvent{
		EventType:   EventRefreshFailure,
		PrincipalID: subject,
		IP:          clientIPFromContext(ctx),
		Error:       cause.Error(),
	})
	return ErrTokenInvalid
}

func (e *Engine) emit(ctx context.Context, event AuditEvent) {
	if e.audit == nil {
		return
	}
	event.Timestamp = time.Now()
	e.audit.Emit(ctx, event)
}
