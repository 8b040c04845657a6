package nav

// Breadcrumb returns the chain of nodes from a root down to the deepest
// node whose href is a segment prefix of currentPath. When several
// branches match, the one reaching the longest href wins. It returns nil
// when nothing matches.
func Breadcrumb(currentPath string, tree []Node) []Node {
	p := CleanPath(currentPath)

	var best []Node
	bestLen := -1

	var visit func(nodes []Node, trail []Node)
	visit = func(nodes []Node, trail []Node) {
		for _, n := range nodes {
			next := append(trail[:len(trail):len(trail)], n)
			if HasSegmentPrefix(p, n.Href) {
				if l := len(CleanPath(n.Href)); l > bestLen {
					best, bestLen = next, l
				}
			}
			visit(n.Children, next)
		}
	}
	visit(tree, nil)

	return best
}
