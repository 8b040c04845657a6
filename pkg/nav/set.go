package nav

import "sort"

// Set is a set of hrefs.
type Set map[string]struct{}

// NewSet returns a set holding the given hrefs.
func NewSet(hrefs ...string) Set {
	s := make(Set, len(hrefs))
	for _, h := range hrefs {
		s[h] = struct{}{}
	}
	return s
}

// Has reports whether href is in the set.
func (s Set) Has(href string) bool {
	_, ok := s[href]
	return ok
}

// Add inserts href.
func (s Set) Add(href string) {
	s[href] = struct{}{}
}

// Remove deletes href.
func (s Set) Remove(href string) {
	delete(s, href)
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for h := range s {
		c[h] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same hrefs.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for h := range s {
		if !o.Has(h) {
			return false
		}
	}
	return true
}

// Sorted returns the hrefs in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
