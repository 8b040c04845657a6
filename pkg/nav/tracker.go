package nav

// Tracker owns the expansion state of a navigation tree. Navigation resets
// the state to the ancestry of the new path; toggles in between are kept
// until the next navigation. A Tracker is not safe for concurrent use.
type Tracker struct {
	expanded Set
	path     string
	seen     bool
}

// NewTracker returns a tracker with nothing expanded.
func NewTracker() *Tracker {
	return &Tracker{expanded: make(Set)}
}

// Recompute replaces the whole expansion state with the ancestors of currentPath.
func (t *Tracker) Recompute(currentPath string, tree []Node) {
	t.expanded = Ancestors(currentPath, tree)
	t.path = CleanPath(currentPath)
	t.seen = true
}

// Navigate recomputes only when currentPath differs from the last observed
// path and reports whether it did.
func (t *Tracker) Navigate(currentPath string, tree []Node) bool {
	if t.seen && CleanPath(currentPath) == t.path {
		return false
	}
	t.Recompute(currentPath, tree)
	return true
}

// Toggle flips href and returns its new state.
func (t *Tracker) Toggle(href string) bool {
	if t.expanded.Has(href) {
		t.expanded.Remove(href)
		return false
	}
	t.expanded.Add(href)
	return true
}

// Expand marks href as expanded.
func (t *Tracker) Expand(href string) {
	t.expanded.Add(href)
}

// Collapse marks href as collapsed.
func (t *Tracker) Collapse(href string) {
	t.expanded.Remove(href)
}

// CollapseAll empties the expansion state.
func (t *Tracker) CollapseAll() {
	t.expanded = make(Set)
}

// IsExpanded reports whether href is expanded.
func (t *Tracker) IsExpanded(href string) bool {
	return t.expanded.Has(href)
}

// Expanded returns a copy of the current state.
func (t *Tracker) Expanded() Set {
	return t.expanded.Clone()
}

// Path returns the last path passed to Recompute or Navigate.
func (t *Tracker) Path() string {
	return t.path
}
