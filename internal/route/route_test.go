package route

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalenderium/internal/policy"
)

func TestDefaultTable(t *testing.T) {
	table := Default()
	entries := table.Entries()
	require.Len(t, entries, 4)

	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/", "/calendar", "/signup", "/login"}, paths)

	home, ok := table.Lookup("home")
	require.True(t, ok)
	assert.False(t, home.Guarded())

	for _, name := range []string{"calendar", "signup", "login"} {
		e, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.True(t, e.Guarded(), name)
	}
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	_, err := NewTable(
		Entry{Path: "/a", Name: "a"},
		Entry{Path: "/b", Name: "a"},
	)
	require.Error(t, err)
	assert.EqualError(t, err, "route a: duplicate name")

	_, err = NewTable(
		Entry{Path: "/a", Name: "a"},
		Entry{Path: "/a/", Name: "b"},
	)
	assert.EqualError(t, err, `route "b": duplicate path /a`)

	_, err = NewTable(Entry{Path: "a", Name: "a"})
	assert.Error(t, err)

	_, err = NewTable(Entry{Path: "/a"})
	assert.Error(t, err)
}

func TestEntriesIsACopy(t *testing.T) {
	table := Default()
	entries := table.Entries()
	entries[0].Path = "/changed"

	_, ok := table.Resolve("/changed")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	table := Default()

	e, ok := table.Resolve("/calendar/")
	require.True(t, ok)
	assert.Equal(t, "calendar", e.Name)

	e, ok = table.Resolve("/login?next=/calendar")
	require.True(t, ok)
	assert.Equal(t, "login", e.Name)

	e, ok = table.Resolve("")
	require.True(t, ok)
	assert.Equal(t, "home", e.Name)

	_, ok = table.Resolve("/nope")
	assert.False(t, ok)
}

func TestNavigate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		hasToken bool
		want     string
		hops     []string
	}{
		{"calendar without token", "/calendar", false, "/login", []string{"/calendar", "/login"}},
		{"calendar with token", "/calendar", true, "/calendar", []string{"/calendar"}},
		{"login with token", "/login", true, "/calendar", []string{"/login", "/calendar"}},
		{"login without token", "/login", false, "/login", []string{"/login"}},
		{"signup with token", "/signup", true, "/calendar", []string{"/signup", "/calendar"}},
		{"signup without token", "/signup", false, "/signup", []string{"/signup"}},
		{"home without token", "/", false, "/", []string{"/"}},
		{"home with token", "/", true, "/", []string{"/"}},
		{"unknown path", "/missing", true, "/", []string{"/missing", "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Navigate(Default(), tt.path, policy.StaticState(tt.hasToken))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Entry.Path)
			assert.Equal(t, tt.hops, res.Hops)
			assert.Equal(t, len(tt.hops) > 1, res.Redirected())
		})
	}
}

func TestRedirectTargetsProceedWithinOneHop(t *testing.T) {
	table := Default()
	for _, state := range []policy.StaticState{true, false} {
		for _, e := range table.Entries() {
			if !e.Guarded() {
				continue
			}
			d := e.Guard(e.Path, "", state)
			if d.Proceed() {
				continue
			}
			target, ok := table.Resolve(d.Target())
			require.True(t, ok)
			if target.Guarded() {
				assert.True(t, target.Guard(target.Path, e.Path, state).Proceed(),
					"%s -> %s with token=%v", e.Path, target.Path, state)
			}
		}
	}
}

func TestGuardRunsOncePerVisit(t *testing.T) {
	calls := 0
	counting := func(to, from string, s policy.SessionState) policy.Decision {
		calls++
		return policy.IsLoggedIn(to, from, s)
	}
	table := MustNewTable(
		Entry{Path: "/", Name: "home"},
		Entry{Path: "/private", Name: "private", Guard: counting},
		Entry{Path: "/login", Name: "login"},
	)

	res, err := Navigate(table, "/private", policy.StaticState(false))
	require.NoError(t, err)
	assert.Equal(t, "/login", res.Entry.Path)
	assert.Equal(t, 1, calls)
}

func TestNavigateDetectsLoops(t *testing.T) {
	table := MustNewTable(
		Entry{Path: "/", Name: "home"},
		Entry{Path: "/a", Name: "a", Guard: policy.RequireSession(policy.Present, "/b")},
		Entry{Path: "/b", Name: "b", Guard: policy.RequireSession(policy.Present, "/a")},
	)
	_, err := Navigate(table, "/a", policy.StaticState(false))
	assert.True(t, errors.Is(err, ErrRedirectLoop))
}

func TestNavigateWithoutFallback(t *testing.T) {
	table := MustNewTable(Entry{Path: "/only", Name: "only"})
	_, err := Navigate(table, "/other", nil)
	assert.Error(t, err)
}
