package blogauth

import "context"

type identityContextKey struct{}
type clientIPContextKey struct{}

// WithIdentity publishes an authenticated identity into the request context.
// The middleware calls this once per request after the token verified and
// the account resolved; the value lives exactly as long as the request.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &id)
}

// ClearIdentity removes any identity visible in ctx. The middleware uses it
// when a presented token is rejected, so a stale identity set by an earlier
// pipeline stage can never leak past the rejection.
func ClearIdentity(ctx context.Context) context.Context {
	return context.WithValue(ctx, identityContextKey{}, (*Identity)(nil))
}

// IdentityFromContext returns the current request's identity, if any. This
// is the read accessor downstream handlers and the authorization layer use;
// ok is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	if id == nil {
		return Identity{}, false
	}
	return *id, true
}

// WithClientIP attaches the caller's IP address to ctx. The engine uses it
// for per-IP login throttling and audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
