package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_RecomputeAdminUsers(t *testing.T) {
	tree := []Node{
		{ID: "a", Href: "/admin", Children: []Node{{ID: "u", Href: "/admin/users"}}},
	}

	tr := NewTracker()
	tr.Recompute("/admin/users", tree)

	assert.True(t, tr.Expanded().Equal(NewSet("/admin")))
	assert.Equal(t, "/admin/users", tr.Path())
}

func TestTracker_ToggleIsInvolution(t *testing.T) {
	tr := NewTracker()
	before := tr.Expanded()

	assert.True(t, tr.Toggle("/admin"))
	assert.True(t, tr.IsExpanded("/admin"))

	assert.False(t, tr.Toggle("/admin"))
	assert.True(t, tr.Expanded().Equal(before))
}

func TestTracker_RecomputeReplacesManualToggles(t *testing.T) {
	tree := []Node{
		{ID: "x", Href: "/x", Children: []Node{{ID: "x1", Href: "/x/1"}}},
		{ID: "y", Href: "/y", Children: []Node{{ID: "y1", Href: "/y/1"}}},
	}

	tr := NewTracker()
	tr.Toggle("/x")
	assert.True(t, tr.Expanded().Equal(NewSet("/x")))

	tr.Recompute("/y/1", tree)
	assert.True(t, tr.Expanded().Equal(NewSet("/y")))
}

func TestTracker_NavigateOnlyOnPathChange(t *testing.T) {
	tree := adminTree()
	tr := NewTracker()

	assert.True(t, tr.Navigate("/admin/users", tree))
	tr.Toggle("/post")

	assert.False(t, tr.Navigate("/admin/users/", tree), "same path must not recompute")
	assert.True(t, tr.IsExpanded("/post"))

	assert.True(t, tr.Navigate("/home", tree))
	assert.False(t, tr.IsExpanded("/post"))
	assert.Empty(t, tr.Expanded())
}

func TestTracker_FirstNavigateToEmptyPathRecomputes(t *testing.T) {
	tr := NewTracker()
	tr.Expand("/x")

	assert.True(t, tr.Navigate("", adminTree()))
	assert.Empty(t, tr.Expanded())
}

func TestTracker_ExpandCollapse(t *testing.T) {
	tr := NewTracker()
	tr.Expand("/a")
	tr.Expand("/a")
	tr.Expand("/b")
	assert.Equal(t, []string{"/a", "/b"}, tr.Expanded().Sorted())

	tr.Collapse("/a")
	assert.Equal(t, []string{"/b"}, tr.Expanded().Sorted())

	tr.CollapseAll()
	assert.Empty(t, tr.Expanded())
}

func TestTracker_ExpandedIsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Expand("/a")

	s := tr.Expanded()
	s.Add("/b")

	assert.False(t, tr.IsExpanded("/b"))
}
