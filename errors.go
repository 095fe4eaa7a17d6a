package blogauth

import "errors"

var (
	// ErrInvalidCredentials is returned by [Engine.Login] for every login
	// failure a caller may see: wrong identifier, wrong secret, and
	// disabled account all collapse to it. The audit log keeps them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is the single opaque outcome of
	// [Engine.Authenticate]: the request carries no usable identity.
	ErrUnauthenticated = errors.New("authentication failed")
	// ErrTokenInvalid is returned by [Engine.Refresh] for every refresh
	// failure, regardless of cause.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrAccountNotFound is the [AccountStore] not-found sentinel.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountDisabled marks an existing account whose enabled flag is
	// off. It never crosses the engine boundary uncollapsed.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountExists is returned by [Engine.Register] on a duplicate
	// identifier.
	ErrAccountExists = errors.New("account already exists")
	// ErrLoginRateLimited is returned when the login throttle rejects an
	// attempt before credentials are checked.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is returned when the refresh throttle rejects
	// an attempt before the token is verified.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
