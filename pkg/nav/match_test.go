package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func adminTree() []Node {
	return []Node{
		{ID: "1", Href: "/home", Label: "Home"},
		{ID: "2", Href: "/admin", Label: "Admin", Children: []Node{
			{ID: "3", Href: "/admin/users", Label: "Users"},
			{ID: "4", Href: "/admin/settings", Label: "Settings", Children: []Node{
				{ID: "5", Href: "/admin/settings/blog", Label: "Blog"},
				{ID: "6", Href: "/admin/settings/theme", Label: "Theme"},
			}},
		}},
		{ID: "7", Href: "/post", Label: "Post", Children: []Node{
			{ID: "8", Href: "/post/new", Label: "New"},
		}},
	}
}

func TestHasSegmentPrefix(t *testing.T) {
	tests := []struct {
		path string
		href string
		want bool
	}{
		{"/admin/users", "/admin", true},
		{"/admin", "/admin", true},
		{"/admin/", "/admin", true},
		{"/admin/users", "/admin/", true},
		{"/home2", "/home", false},
		{"/posts", "/post", false},
		{"/post/1", "/post", true},
		{"/home", "", false},
		{"/home", "/", false},
		{"/", "/", false},
		{"/admin/users?tab=1", "/admin/users", true},
		{"/admin#top", "/admin", true},
		{"", "/admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.path+"|"+tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, HasSegmentPrefix(tt.path, tt.href))
		})
	}
}

func TestAncestors_SingleLevel(t *testing.T) {
	tree := []Node{
		{ID: "a", Href: "/admin", Children: []Node{
			{ID: "u", Href: "/admin/users"},
		}},
	}

	got := Ancestors("/admin/users", tree)
	assert.Equal(t, []string{"/admin"}, got.Sorted())
}

func TestAncestors_MultiLevel(t *testing.T) {
	got := Ancestors("/admin/settings/theme", adminTree())
	assert.Equal(t, []string{"/admin", "/admin/settings"}, got.Sorted())
}

func TestAncestors_RootGroupNeverMatches(t *testing.T) {
	for _, root := range []string{"", "/"} {
		tree := []Node{
			{ID: "r", Href: root, Children: []Node{
				{ID: "h", Href: "/home"},
			}},
		}

		got := Ancestors("/home", tree)
		assert.False(t, got.Has(root), "root href %q must not be expanded", root)
		assert.Empty(t, got)
	}
}

func TestAncestors_RootGroupStillDescends(t *testing.T) {
	tree := []Node{
		{ID: "r", Href: "", Children: []Node{
			{ID: "b", Href: "/blog", Children: []Node{
				{ID: "p", Href: "/blog/go"},
			}},
		}},
	}

	got := Ancestors("/blog/go", tree)
	assert.Equal(t, []string{"/blog"}, got.Sorted())
}

func TestAncestors_SegmentBoundary(t *testing.T) {
	got := Ancestors("/posts", adminTree())
	assert.False(t, got.Has("/post"))
	assert.Empty(t, got)
}

func TestAncestors_GroupWithUnrelatedHrefContainingMatch(t *testing.T) {
	tree := []Node{
		{ID: "c", Href: "/categories", Children: []Node{
			{ID: "j", Href: "/posts/java"},
		}},
	}

	got := Ancestors("/posts/java/12", tree)
	assert.Equal(t, []string{"/categories"}, got.Sorted())
}

func TestAncestors_LeafIsNotExpanded(t *testing.T) {
	got := Ancestors("/home", adminTree())
	assert.Empty(t, got)
}

func TestAncestors_EmptyAndNilTrees(t *testing.T) {
	assert.Empty(t, Ancestors("/admin", nil))
	assert.Empty(t, Ancestors("/admin", []Node{}))
	assert.Empty(t, Ancestors("", adminTree()))
	assert.Empty(t, Ancestors("/admin", []Node{{ID: "x", Href: "/admin", Children: nil}}))
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "", CleanPath(""))
	assert.Equal(t, "/", CleanPath("/"))
	assert.Equal(t, "/a/b", CleanPath("/a//b/"))
	assert.Equal(t, "/a", CleanPath("a"))
	assert.Equal(t, "/a", CleanPath("/a?x=1#y"))
}
