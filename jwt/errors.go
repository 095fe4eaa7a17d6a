package jwt

import "errors"

// Verification failures are kept distinct here for audit logging. The engine
// collapses all four to one opaque outcome before they leave the auth core;
// callers must never learn which check rejected a token.
var (
	// ErrMalformed reports a structurally invalid token (wrong segment
	// count, undecodable header or payload).
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature reports a signature mismatch. Tampering and a wrong
	// key are deliberately indistinguishable.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrExpired reports that now >= expiresAt for an otherwise valid token.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind reports an access token presented in a refresh context
	// or vice versa.
	ErrWrongKind = errors.New("token kind mismatch")
)
