package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"kalenderium/internal/policy"
)

const (
	SessionName = "kalenderium"
	TokenKey    = "token"
)

// Store is the cookie-backed session holding the token slot that the page
// guards read and the login flow writes.
type Store struct {
	cookies *sessions.CookieStore
}

type Options struct {
	Secret string
	MaxAge time.Duration
	Secure bool
}

func NewStore(opts Options) *Store {
	cookies := sessions.NewCookieStore([]byte(opts.Secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{cookies: cookies}
}

// Session returns the request's session. A cookie that fails to decode
// yields a fresh, empty session.
func (s *Store) Session(r *http.Request) *sessions.Session {
	session, _ := s.cookies.Get(r, SessionName)
	return session
}

// Token reads the token slot. The value is opaque here.
func (s *Store) Token(r *http.Request) string {
	tok, _ := s.Session(r).Values[TokenKey].(string)
	return tok
}

func (s *Store) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	session := s.Session(r)
	session.Values[TokenKey] = token
	return session.Save(r, w)
}

// ClearToken empties the token slot and keeps the rest of the session.
func (s *Store) ClearToken(w http.ResponseWriter, r *http.Request) error {
	session := s.Session(r)
	delete(session.Values, TokenKey)
	return session.Save(r, w)
}

// State adapts the request's token slot to the guard input.
func (s *Store) State(r *http.Request) policy.SessionState {
	return requestState{present: s.Token(r) != ""}
}

type requestState struct {
	present bool
}

func (s requestState) HasToken() bool {
	return s.present
}
