package blogauth

import "context"

// Identity is the request-scoped view of an authenticated principal. It is
// reconstructed fresh on every request and never cached or persisted; the
// resolver flattens the backing account and its role rows into this plain
// value so the core holds no live references into the persistence layer.
type Identity struct {
	PrincipalID string
	DisplayName string
	Enabled     bool
	Capabilities []string
}

// HasCapability reports whether the identity carries the named capability.
func (id Identity) HasCapability(name string) bool {
	for _, c := range id.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// AccountRecord is the flat account shape returned by [AccountStore]. The
// PrincipalID is the stable identifier used as the token subject; the
// Identifier is what the user types at login.
type AccountRecord struct {
	PrincipalID  string
	Identifier   string
	DisplayName  string
	PasswordHash string
	Enabled      bool
	Roles        []string
}

// RegisterInput is what callers hand to [Engine.Register]. The secret is
// the raw password; the engine hashes it and assigns the principal ID.
type RegisterInput struct {
	Identifier  string
	DisplayName string
	Secret      string
	Roles       []string
}

// CreateAccountInput is the input for [AccountStore.Create]. The engine
// fills PrincipalID and PasswordHash before calling the store.
type CreateAccountInput struct {
	PrincipalID  string
	Identifier   string
	DisplayName  string
	PasswordHash string
	Roles        []string
}

// AccountStore is the persistence collaborator. Implementations return
// [ErrAccountNotFound] when no matching account exists and
// [ErrAccountExists] on a duplicate identifier; any network or database
// timeout policy is the implementation's responsibility.
type AccountStore interface {
	// FindByIdentifier looks up an account by its login identifier,
	// including password hash and role set.
	FindByIdentifier(ctx context.Context, identifier string) (AccountRecord, error)
	// FindBySubject looks up an account by the stable identifier carried
	// as a token subject, including its role set.
	FindBySubject(ctx context.Context, subject string) (AccountRecord, error)
	// Create persists a new account with its role set.
	Create(ctx context.Context, input CreateAccountInput) (AccountRecord, error)
}

// SecretVerifier is the credential-check collaborator. [password.Hasher]
// satisfies it and is the default.
type SecretVerifier interface {
	Verify(secret, encodedHash string) (bool, error)
}

// SecretHasher extends SecretVerifier with hashing, needed only by
// registration.
type SecretHasher interface {
	SecretVerifier
	Hash(secret string) (string, error)
}

// TokenPair is the login/refresh response shape.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}
