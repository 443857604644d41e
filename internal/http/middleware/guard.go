package middleware

import (
	"context"
	"net/http"
	"net/url"

	"kalenderium/internal/auth"
	"kalenderium/internal/policy"
)

type contextKey string

const (
	sessionStateKey contextKey = "session_state"
	routeNameKey    contextKey = "route_name"
	userIDKey       contextKey = "user_id"
)

// Session reads the token slot once per request and stores the resulting
// state in the request context for guards and views.
func Session(store *auth.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithSessionState(r.Context(), store.State(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ContextWithSessionState(ctx context.Context, state policy.SessionState) context.Context {
	return context.WithValue(ctx, sessionStateKey, state)
}

func SessionStateFromContext(ctx context.Context) policy.SessionState {
	state, _ := ctx.Value(sessionStateKey).(policy.SessionState)
	return state
}

func RouteNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(routeNameKey).(string)
	return name
}

// Guard runs guard once before the page handler. A redirect decision ends the
// request; a nil guard always proceeds.
func Guard(routeName string, guard policy.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), routeNameKey, routeName)
			r = r.WithContext(ctx)

			if guard != nil {
				d := guard(r.URL.Path, refererPath(r), SessionStateFromContext(ctx))
				if !d.Proceed() {
					Redirect(w, r, d.Target())
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Redirect sends a 303, or an HX-Redirect header for htmx requests.
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// refererPath is the previous page of this site, if the browser sent one.
func refererPath(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return ""
	}
	return u.Path
}
