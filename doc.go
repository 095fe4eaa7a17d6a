// Package blogauth is the authentication and authorization core of the blog
// backend: issuance and verification of signed session tokens, per-request
// identity resolution, and role-based access decisions.
//
// The package is the public surface. [Engine] orchestrates login,
// registration, token refresh, and request-time authentication; the
// middleware and policy sub-packages plug it into an HTTP pipeline. Engine
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build]; the signing key and policy rule table are loaded
// once and never mutated afterwards.
//
// Persistent account storage is a collaborator behind [AccountStore]; the
// core never caches identities or verified tokens across requests. Every
// request re-verifies and re-resolves from scratch, so a disabled account
// loses access on its very next request regardless of token validity.
//
// Failure handling is deliberately opaque: callers outside the core see only
// "no identity" or a generic login failure, never which check rejected a
// token or credential. The audit pipeline keeps the distinct causes for
// operational diagnosis.
package blogauth
