package route

import (
	"strings"

	"github.com/pkg/errors"

	"kalenderium/internal/policy"
)

// Entry binds a page path to the view that renders it and an optional guard.
type Entry struct {
	Path  string
	Name  string
	View  string
	Guard policy.Guard
}

func (e Entry) Guarded() bool {
	return e.Guard != nil
}

// Table is the ordered, immutable set of page routes.
type Table struct {
	entries []Entry
	byPath  map[string]int
	byName  map[string]int
}

func NewTable(entries ...Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byPath:  make(map[string]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.Errorf("route %q: name is required", e.Path)
		}
		if !strings.HasPrefix(e.Path, "/") {
			return nil, errors.Errorf("route %q: path must start with /", e.Name)
		}
		path := normalize(e.Path)
		if _, ok := t.byPath[path]; ok {
			return nil, errors.Errorf("route %q: duplicate path %s", e.Name, path)
		}
		if _, ok := t.byName[e.Name]; ok {
			return nil, errors.Errorf("route %s: duplicate name", e.Name)
		}
		e.Path = path
		t.byPath[path] = len(t.entries)
		t.byName[e.Name] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// MustNewTable is NewTable for static tables built at startup.
func MustNewTable(entries ...Entry) *Table {
	t, err := NewTable(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Default is the page table served by the application.
func Default() *Table {
	return MustNewTable(
		Entry{Path: "/", Name: "home", View: "home.html"},
		Entry{Path: "/calendar", Name: "calendar", View: "calendar.html", Guard: policy.IsLoggedIn},
		Entry{Path: "/signup", Name: "signup", View: "signup.html", Guard: policy.LoggedInRedirectDashboard},
		Entry{Path: "/login", Name: "login", View: "login.html", Guard: policy.LoggedInRedirectDashboard},
	)
}

// Resolve finds the entry for path. A single trailing slash is ignored.
func (t *Table) Resolve(path string) (Entry, bool) {
	i, ok := t.byPath[normalize(path)]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

func (t *Table) Lookup(name string) (Entry, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Entries returns a copy of the table in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) Len() int {
	return len(t.entries)
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
