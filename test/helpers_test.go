package test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/blogapp/blogauth"
	"github.com/blogapp/blogauth/middleware"
	"github.com/blogapp/blogauth/password"
	"github.com/blogapp/blogauth/policy"
)

var testSecret = []byte("integration-test-secret-32-bytes!")

// fastParams keeps argon2 at its floor so end-to-end tests stay quick.
var fastParams = password.Params{
	Memory:      8 * 1024,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   16,
}

type memStore struct {
	mu       sync.RWMutex
	accounts map[string]blogauth.AccountRecord
	subjects map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]blogauth.AccountRecord),
		subjects: make(map[string]string),
	}
}

func (s *memStore) FindByIdentifier(_ context.Context, identifier string) (blogauth.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[identifier]
	if !ok {
		return blogauth.AccountRecord{}, blogauth.ErrAccountNotFound
	}
	return rec, nil
}

func (s *memStore) FindBySubject(_ context.Context, subject string) (blogauth.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identifier, ok := s.subjects[subject]
	if !ok {
		return blogauth.AccountRecord{}, blogauth.ErrAccountNotFound
	}
	return s.accounts[identifier], nil
}

func (s *memStore) Create(_ context.Context, input blogauth.CreateAccountInput) (blogauth.AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[input.Identifier]; exists {
		return blogauth.AccountRecord{}, blogauth.ErrAccountExists
	}
	rec := blogauth.AccountRecord{
		PrincipalID:  input.PrincipalID,
		Identifier:   input.Identifier,
		DisplayName:  input.DisplayName,
		PasswordHash: input.PasswordHash,
		Enabled:      true,
		Roles:        input.Roles,
	}
	s.accounts[rec.Identifier] = rec
	s.subjects[rec.PrincipalID] = rec.Identifier
	return rec, nil
}

func (s *memStore) setEnabled(identifier string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.accounts[identifier]
	rec.Enabled = enabled
	s.accounts[identifier] = rec
}

func newTestEngine(t *testing.T) (*blogauth.Engine, *memStore) {
	t.Helper()

	cfg := blogauth.DefaultConfig()
	cfg.Token.Secret = testSecret
	cfg.Password.Memory = fastParams.Memory
	cfg.Password.Time = fastParams.Time
	cfg.Password.Parallelism = fastParams.Parallelism
	cfg.Password.SaltLength = fastParams.SaltLength
	cfg.Password.KeyLength = fastParams.KeyLength

	store := newMemStore()
	engine, err := blogauth.New().
		WithConfig(cfg).
		WithAccountStore(store).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store
}

// blogAPI composes the middleware chain the way a real deployment would.
func blogAPI(engine *blogauth.Engine) http.Handler {
	table := policy.NewTable([]policy.Rule{
		{Pattern: "/api/auth/", Requirement: policy.Public()},
		{Pattern: "/actuator/health", Requirement: policy.Public()},
		{Pattern: "/api/posts", Methods: []string{"GET"}, Requirement: policy.Public()},
		{Pattern: "/api/posts", Methods: []string{"POST"}, Requirement: policy.Authenticated()},
		{Pattern: "/api/me", Requirement: policy.Authenticated()},
		{Pattern: "/api/admin/", Requirement: policy.RequireCapability("ADMIN")},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /actuator/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if id, ok := blogauth.IdentityFromContext(r.Context()); ok {
			w.Header().Set("X-Principal", id.PrincipalID)
		}
		w.WriteHeader(http.StatusOK)
	})

	return middleware.Authenticate(engine)(middleware.Authorize(table)(mux))
}
