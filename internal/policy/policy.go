package policy

// Presence is the session token state a guard expects before letting a
// navigation through.
type Presence bool

const (
	Present Presence = true
	Absent  Presence = false
)

func (p Presence) String() string {
	if p == Present {
		return "present"
	}
	return "absent"
}

// SessionState is the only input guards read. Callers pass it explicitly so
// guards never touch cookies, headers or other request state themselves.
type SessionState interface {
	HasToken() bool
}

// StaticState is a SessionState with a fixed answer.
type StaticState bool

func (s StaticState) HasToken() bool {
	return bool(s)
}

// Decision is the outcome of a guard: either proceed to the requested path or
// abandon it and navigate to Target instead. The zero value proceeds.
type Decision struct {
	target string
}

func Proceed() Decision {
	return Decision{}
}

func RedirectTo(path string) Decision {
	if path == "" {
		path = "/"
	}
	return Decision{target: path}
}

func (d Decision) Proceed() bool {
	return d.target == ""
}

// Target is the redirect destination, empty when the decision proceeds.
func (d Decision) Target() string {
	return d.target
}

func (d Decision) String() string {
	if d.Proceed() {
		return "proceed"
	}
	return "redirect:" + d.target
}

// Guard is evaluated once per navigation, before the view for `to` renders.
type Guard func(to, from string, state SessionState) Decision

// RequireSession builds a guard that proceeds when the token presence matches
// expect and redirects to redirect otherwise.
func RequireSession(expect Presence, redirect string) Guard {
	return func(_, _ string, state SessionState) Decision {
		if Presence(hasToken(state)) == expect {
			return Proceed()
		}
		return RedirectTo(redirect)
	}
}

func hasToken(state SessionState) bool {
	if state == nil {
		return false
	}
	return state.HasToken()
}

const (
	LoginPath     = "/login"
	DashboardPath = "/calendar"
)

// IsLoggedIn protects pages that need a session.
var IsLoggedIn = RequireSession(Present, LoginPath)

// LoggedInRedirectDashboard keeps signed-in users away from the login and
// signup pages.
var LoggedInRedirectDashboard = RequireSession(Absent, DashboardPath)
