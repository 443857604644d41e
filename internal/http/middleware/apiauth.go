package middleware

import (
	"context"
	"net/http"
	"strings"

	"kalenderium/internal/http/errs"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, plaintext string) (int64, error)
}

func ContextWithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext reports the authenticated API user, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Authenticate attaches the bearer token's user to the request. Requests
// without an Authorization header pass through anonymously; a malformed or
// unknown token is rejected.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Authorization")

			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			tok, ok := BearerToken(r)
			if !ok {
				errs.InvalidAuthenticationTokenResponse(w)
				return
			}
			id, err := auth.Authenticate(r.Context(), tok)
			if err != nil {
				errs.InvalidAuthenticationTokenResponse(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), id)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			errs.AuthenticationRequiredResponse(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
