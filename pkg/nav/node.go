package nav

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateHref is returned by Validate when two nodes share an href.
	ErrDuplicateHref = errors.New("duplicate navigation href")

	// ErrMissingID is returned by Validate when a node has no id.
	ErrMissingID = errors.New("navigation node without id")
)

// Node represents an individual entry in the navigation tree, which may contain children.
// A node without children is a leaf (menu item), a node with children is a group.
type Node struct {
	// ID is the backend identifier of the node.
	ID ID `json:"id" yaml:"id"`

	// Href is the location the node points to. It is unique across the tree.
	Href string `json:"href" yaml:"href"`

	// Label is the display text of the node.
	Label string `json:"label" yaml:"label"`

	// ParentID is the id of the parent node, empty for roots.
	ParentID ID `json:"parentId,omitempty" yaml:"parentId,omitempty"`

	// SortOrder is the position of the node among its siblings.
	SortOrder int `json:"sortOrder,omitempty" yaml:"sortOrder,omitempty"`

	// Depth is the nesting level reported by the backend.
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`

	// Icon is an optional icon name.
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Description is an optional description of the node.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Active is false for menus disabled in the admin screens.
	Active *bool `json:"active,omitempty" yaml:"active,omitempty"`

	// Children are the sub-nodes of this node.
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsGroup reports whether the node has children and can be expanded.
func (n Node) IsGroup() bool {
	return len(n.Children) > 0
}

// Walk visits every node of the tree depth-first, parents before children.
// The depth passed to fn starts at 0 for the roots. Returning false from fn
// skips the node's children.
func Walk(tree []Node, fn func(n Node, depth int) bool) {
	walk(tree, 0, fn)
}

func walk(nodes []Node, depth int, fn func(n Node, depth int) bool) {
	for _, n := range nodes {
		if fn(n, depth) {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Find returns the node with the given id.
func Find(tree []Node, id ID) (Node, bool) {
	var (
		found Node
		ok    bool
	)

	Walk(tree, func(n Node, _ int) bool {
		if ok {
			return false
		}
		if n.ID == id {
			found, ok = n, true
			return false
		}
		return true
	})

	return found, ok
}

// Count returns the total number of nodes in the tree.
func Count(tree []Node) int {
	total := 0
	Walk(tree, func(Node, int) bool {
		total++
		return true
	})
	return total
}

// Validate checks the tree invariants: every node has an id and non-empty
// hrefs are unique across the tree. Empty hrefs are allowed for pure groups.
func Validate(tree []Node) error {
	seen := make(map[string]ID)

	var err error
	Walk(tree, func(n Node, _ int) bool {
		if err != nil {
			return false
		}
		if n.ID == "" {
			err = fmt.Errorf("%w: label %q", ErrMissingID, n.Label)
			return false
		}
		if n.Href == "" {
			return true
		}
		if other, dup := seen[n.Href]; dup {
			err = fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateHref, n.Href, other, n.ID)
			return false
		}
		seen[n.Href] = n.ID
		return true
	})

	return err
}
