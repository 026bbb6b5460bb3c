package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// TokenVerifier resolves a bearer token to the identity it was issued for.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (userID, email string, err error)
}

// Authenticate attaches the caller's identity when a valid bearer token is
// present. Requests without one continue anonymously.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, email, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil || userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), userID, email, token)))
		})
	}
}

// RequireUser gates personalized routes and is evaluated on every request.
// Browsers are redirected to signInPath with a next parameter, API callers get 401.
func RequireUser(signInPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFrom(r) != "" {
				next.ServeHTTP(w, r)
				return
			}

			if acceptsHTML(r) {
				target := signInPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Please sign in to continue", nil)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
