package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blogapp/blogauth"
	"github.com/blogapp/blogauth/jwt"
)

func doGet(t *testing.T, api http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	api.ServeHTTP(rr, req)
	return rr
}

func TestFullSessionLifecycle(t *testing.T) {
	engine, _ := newTestEngine(t)
	api := blogAPI(engine)
	ctx := context.Background()

	// Register through the engine the way an auth handler would.
	id, err := engine.Register(ctx, blogauth.RegisterInput{
		Identifier:  "bob",
		DisplayName: "Bob",
		Secret:      "hunter2-hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	pair, err := engine.Login(ctx, "bob", "hunter2-hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rr := doGet(t, api, "/api/me", pair.AccessToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("/api/me = %d, want 200", rr.Code)
	}
	if got := rr.Header().Get("X-Principal"); got != id.PrincipalID {
		t.Fatalf("principal = %q, want %q", got, id.PrincipalID)
	}

	// Rotate and keep going with the new access token.
	rotated, err := engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rr := doGet(t, api, "/api/me", rotated.AccessToken); rr.Code != http.StatusOK {
		t.Fatalf("/api/me after refresh = %d, want 200", rr.Code)
	}
}

func TestAnonymousAccess(t *testing.T) {
	engine, _ := newTestEngine(t)
	api := blogAPI(engine)

	if rr := doGet(t, api, "/actuator/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("health = %d, want 200", rr.Code)
	}
	if rr := doGet(t, api, "/api/posts", ""); rr.Code != http.StatusOK {
		t.Fatalf("GET /api/posts = %d, want 200", rr.Code)
	}
	if rr := doGet(t, api, "/api/me", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/me = %d, want 401", rr.Code)
	}
}

func TestExpiredTokenOnProtectedRoute(t *testing.T) {
	engine, _ := newTestEngine(t)
	api := blogAPI(engine)

	if _, err := engine.Register(context.Background(), blogauth.RegisterInput{
		Identifier: "bob",
		Secret:     "hunter2-hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	codec, err := jwt.NewCodec(jwt.Config{Secret: testSecret, AccessTTL: time.Hour, RefreshTTL: time.Hour})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	expired, err := codec.Issue("some-principal", jwt.KindAccess, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if rr := doGet(t, api, "/api/me", expired); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expired token = %d, want 401", rr.Code)
	}
}

func TestCapabilityEnforcement(t *testing.T) {
	engine, _ := newTestEngine(t)
	api := blogAPI(engine)
	ctx := context.Background()

	if _, err := engine.Register(ctx, blogauth.RegisterInput{
		Identifier: "bob",
		Secret:     "hunter2-hunter2",
	}); err != nil {
		t.Fatalf("register user: %v", err)
	}
	if _, err := engine.Register(ctx, blogauth.RegisterInput{
		Identifier: "root",
		Secret:     "admin-sesame-open",
		Roles:      []string{"USER", "ADMIN"},
	}); err != nil {
		t.Fatalf("register admin: %v", err)
	}

	userPair, err := engine.Login(ctx, "bob", "hunter2-hunter2")
	if err != nil {
		t.Fatalf("user login: %v", err)
	}
	adminPair, err := engine.Login(ctx, "root", "admin-sesame-open")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}

	if rr := doGet(t, api, "/api/admin/stats", userPair.AccessToken); rr.Code != http.StatusForbidden {
		t.Fatalf("user on admin route = %d, want 403", rr.Code)
	}
	if rr := doGet(t, api, "/api/admin/stats", adminPair.AccessToken); rr.Code != http.StatusOK {
		t.Fatalf("admin on admin route = %d, want 200", rr.Code)
	}
	if rr := doGet(t, api, "/api/admin/stats", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous on admin route = %d, want 401", rr.Code)
	}
}

func TestDisabledAccountLosesAccessMidSession(t *testing.T) {
	engine, store := newTestEngine(t)
	api := blogAPI(engine)
	ctx := context.Background()

	if _, err := engine.Register(ctx, blogauth.RegisterInput{
		Identifier: "bob",
		Secret:     "hunter2-hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := engine.Login(ctx, "bob", "hunter2-hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if rr := doGet(t, api, "/api/me", pair.AccessToken); rr.Code != http.StatusOK {
		t.Fatalf("before disable = %d, want 200", rr.Code)
	}

	store.setEnabled("bob", false)

	if rr := doGet(t, api, "/api/me", pair.AccessToken); rr.Code != http.StatusUnauthorized {
		t.Fatalf("after disable = %d, want 401", rr.Code)
	}
	if _, err := engine.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("refresh succeeded for disabled account")
	}
	if _, err := engine.Login(ctx, "bob", "hunter2-hunter2"); err == nil {
		t.Fatal("login succeeded for disabled account")
	}
}

func TestConcurrentAuthentication(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Register(ctx, blogauth.RegisterInput{
		Identifier: "bob",
		Secret:     "hunter2-hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, err := engine.Login(ctx, "bob", "hunter2-hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	const workers = 16
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := engine.Authenticate(ctx, pair.AccessToken, "/api/me")
			errs <- err
		}()
	}
	for i := 0; i < workers; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent authenticate: %v", err)
		}
	}
}
