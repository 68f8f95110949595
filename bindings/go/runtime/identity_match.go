package runtime

import (
	"maps"
	"path"
)

// Match reports whether i is matched by pattern. All attributes except the path must be equal.
// The path of pattern is a path.Match glob, and a pattern without path accepts any path.
// Neither identity is modified.
func (i Identity) Match(pattern Identity) bool {
	if !matchPath(i[IdentityAttributePath], pattern[IdentityAttributePath]) {
		return false
	}
	return maps.Equal(withoutPath(i), withoutPath(pattern))
}

func matchPath(p, pattern string) bool {
	if pattern == "" {
		return true
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}

func withoutPath(i Identity) Identity {
	rest := maps.Clone(i)
	delete(rest, IdentityAttributePath)
	return rest
}
