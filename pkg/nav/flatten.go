package nav

// Row is one visible line of a rendered tree.
type Row struct {
	Node     Node
	Depth    int
	Expanded bool
	Last     bool // last child of its parent

	// Branches holds, for each ancestor level, whether that ancestor has
	// siblings below it. Used to draw the vertical guides.
	Branches []bool
}

// Flatten returns the visible rows of the tree: roots always, children
// only when every group above them is in expanded.
func Flatten(tree []Node, expanded Set) []Row {
	var rows []Row
	appendVisible(&rows, tree, expanded, 0, nil)
	return rows
}

func appendVisible(rows *[]Row, nodes []Node, expanded Set, depth int, branches []bool) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		open := n.IsGroup() && expanded.Has(n.Href)

		*rows = append(*rows, Row{
			Node:     n,
			Depth:    depth,
			Expanded: open,
			Last:     last,
			Branches: append([]bool(nil), branches...),
		})

		if open {
			appendVisible(rows, n.Children, expanded, depth+1, append(branches, !last))
		}
	}
}
