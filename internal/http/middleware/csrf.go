package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"kalenderium/internal/auth"
)

const csrfContextKey contextKey = "csrf_token"

const (
	csrfSessionKey = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
)

func CSRFTokenFromContext(r *http.Request) string {
	if token, ok := r.Context().Value(csrfContextKey).(string); ok {
		return token
	}
	return ""
}

// CSRF keeps a per-session token and rejects unsafe requests that do not
// echo it back in the form or the X-CSRF-Token header.
func CSRF(store *auth.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := store.Session(r)
			token, ok := session.Values[csrfSessionKey].(string)
			if !ok || token == "" {
				token = generateCSRFToken()
				session.Values[csrfSessionKey] = token
				_ = session.Save(r, w)
			}

			if isUnsafeMethod(r.Method) {
				reqToken := r.Header.Get(csrfHeader)
				if reqToken == "" {
					reqToken = r.FormValue(csrfFormField)
				}
				if reqToken == "" || subtle.ConstantTimeCompare([]byte(reqToken), []byte(token)) != 1 {
					http.Error(w, "CSRF token mismatch", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), csrfContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func generateCSRFToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
