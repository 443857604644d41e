package route

import (
	"github.com/pkg/errors"

	"kalenderium/internal/policy"
)

// FallbackPath is where navigations to unknown paths end up.
const FallbackPath = "/"

var ErrRedirectLoop = errors.New("route: redirect loop")

// Result describes a completed navigation. Hops lists every path visited,
// starting with the requested one and ending with Entry.Path.
type Result struct {
	Entry Entry
	Hops  []string
}

func (r Result) Redirected() bool {
	return len(r.Hops) > 1
}

// Navigate runs path through the table and its guards until a guard proceeds
// or an unguarded entry is reached. Each visited entry's guard runs once.
func Navigate(t *Table, path string, state policy.SessionState) (Result, error) {
	var res Result
	from := ""
	to := normalize(path)
	for i := 0; i <= t.Len(); i++ {
		res.Hops = append(res.Hops, to)
		entry, ok := t.Resolve(to)
		if !ok {
			if to == FallbackPath {
				return res, errors.Errorf("route: fallback %s is not in the table", FallbackPath)
			}
			from, to = to, FallbackPath
			continue
		}
		if !entry.Guarded() {
			res.Entry = entry
			return res, nil
		}
		d := entry.Guard(to, from, state)
		if d.Proceed() {
			res.Entry = entry
			return res, nil
		}
		from, to = to, normalize(d.Target())
	}
	return res, errors.Wrapf(ErrRedirectLoop, "after %v", res.Hops)
}
