package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/blogapp/blogauth"
)

// Authenticate returns the silent authentication filter. It never writes a
// response: requests on public path prefixes pass through untouched,
// requests without a bearer token continue anonymously, and requests whose
// token is rejected continue anonymously with any earlier identity cleared.
// Turning the absence of identity into a 401 or 403 is [Authorize]'s job.
func Authenticate(engine *blogauth.Engine) func(http.Handler) http.Handler {
	prefixes := engine.PublicPathPrefixes()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := blogauth.WithClientIP(r.Context(), clientIP(r))
			r = r.WithContext(ctx)

			if isPublic(prefixes, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := engine.Authenticate(ctx, token, r.URL.Path)
			if err != nil {
				next.ServeHTTP(w, r.WithContext(blogauth.ClearIdentity(ctx)))
				return
			}

			next.ServeHTTP(w, r.WithContext(blogauth.WithIdentity(ctx, id)))
		})
	}
}

func isPublic(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
