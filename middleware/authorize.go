package middleware

import (
	"net/http"

	"github.com/blogapp/blogauth"
	"github.com/blogapp/blogauth/policy"
)

// Authorize enforces a route policy table against the identity (or lack of
// one) that [Authenticate] left in the request context. Denials are
// terminal: 401 when no identity was present, 403 when the identity lacks
// the required capability.
func Authorize(table *policy.Table) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var caller *blogauth.Identity
			if id, ok := blogauth.IdentityFromContext(r.Context()); ok {
				caller = &id
			}

			decision := table.Evaluate(caller, r.Method, r.URL.Path)
			if !decision.Allowed {
				if decision.Reason == policy.ReasonInsufficientCapability {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth is a strict guard for wiring single handlers outside a policy
// table: the request must carry a resolved identity or it is rejected
// with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := blogauth.IdentityFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
