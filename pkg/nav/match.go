package nav

import (
	"path"
	"strings"
)

// Ancestors returns the hrefs of the group nodes that should be expanded
// when currentPath is displayed: groups whose href is a segment prefix of
// the path, and groups containing a descendant whose href is. Root hrefs
// ("" and "/") never match. A nil or empty tree yields an empty set.
func Ancestors(currentPath string, tree []Node) Set {
	out := make(Set)
	collect(CleanPath(currentPath), tree, out)
	return out
}

// collect adds matching groups under nodes to out and reports whether any
// node in nodes (or below) matched.
func collect(p string, nodes []Node, out Set) bool {
	found := false
	for _, n := range nodes {
		self := HasSegmentPrefix(p, n.Href)
		below := collect(p, n.Children, out)
		if !self && !below {
			continue
		}
		found = true
		if n.IsGroup() && !isRoot(n.Href) {
			out.Add(n.Href)
		}
	}
	return found
}

// HasSegmentPrefix reports whether href is an ancestor-or-self of p on path
// segment boundaries: "/post" matches "/post" and "/post/1" but not "/posts".
func HasSegmentPrefix(p, href string) bool {
	if isRoot(href) {
		return false
	}
	href = CleanPath(href)
	p = CleanPath(p)
	return p == href || strings.HasPrefix(p, href+"/")
}

// CleanPath strips query and fragment and normalizes slashes.
func CleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return ""
	}
	return path.Clean("/" + p)
}

func isRoot(href string) bool {
	return CleanPath(href) == "" || CleanPath(href) == "/"
}
