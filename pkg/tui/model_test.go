package tui

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/blogadmin/pkg/nav"
	"github.com/mchmarny/blogadmin/pkg/navigation"
	"github.com/mchmarny/blogadmin/pkg/state"
	"github.com/mchmarny/blogadmin/pkg/store"
)

type funcSource func(ctx context.Context) ([]nav.Node, error)

func (f funcSource) Tree(ctx context.Context) ([]nav.Node, error) { return f(ctx) }

func adminTree() []nav.Node {
	return []nav.Node{
		{ID: "1", Href: "/admin", Label: "Dashboard"},
		{ID: "2", Href: "/admin/content", Label: "Content", Children: []nav.Node{
			{ID: "3", Href: "/admin/content/posts", Label: "Posts"},
			{ID: "4", Href: "/admin/content/comments", Label: "Comments"},
		}},
		{ID: "5", Href: "/admin/settings", Label: "Settings", Children: []nav.Node{
			{ID: "6", Href: "/admin/settings/navigation", Label: "Navigation"},
		}},
	}
}

func staticLoader(tree []nav.Node) *navigation.Loader {
	return navigation.NewLoader(funcSource(func(context.Context) ([]nav.Node, error) {
		return tree, nil
	}))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got, cmd
}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, m.load()())
	return m
}

func labels(rows []nav.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Node.Label)
	}
	return out
}

func TestModel_InitialLoadExpandsCurrentPath(t *testing.T) {
	m := New(staticLoader(adminTree()), WithPath("/admin/content/posts?draft=1"))
	require.NotNil(t, m.Init())
	assert.True(t, m.loading)

	m = loaded(t, m)

	assert.False(t, m.loading)
	assert.Equal(t, []string{"Dashboard", "Content", "Posts", "Comments", "Settings"}, labels(m.rows))
	assert.Equal(t, []string{"/admin/content"}, m.Expanded().Sorted())
	assert.Equal(t, "/admin/content/posts", m.Path())
	assert.Equal(t, 2, m.cursor, "cursor starts on the open item")

	view := m.View()
	assert.Contains(t, view, "Posts")
	assert.Contains(t, view, "Content › Posts")
}

func TestModel_ToggleAndNavigate(t *testing.T) {
	mem := store.NewMemory()
	m := loaded(t, New(staticLoader(adminTree()), WithPath("/admin/content/posts"), WithStore(mem)))

	// space on a leaf does nothing
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Len(t, m.rows, 5)

	m, _ = update(t, m, runes("k"))
	require.Equal(t, "Content", m.rows[m.cursor].Node.Label)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, []string{"Dashboard", "Content", "Settings"}, labels(m.rows))
	assert.Empty(t, m.Expanded().Sorted())

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, []string{"Dashboard", "Content", "Settings", "Navigation"}, labels(m.rows))

	m, _ = update(t, m, runes("j"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "/admin/settings/navigation", m.Path())
	assert.Equal(t, []string{"/admin/settings"}, m.Expanded().Sorted())
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	v, ok, err := mem.Get(context.Background(), store.KeyLastPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/admin/settings/navigation", v)

	// opening the same path again keeps manual toggles
	m, _ = update(t, m, runes("k"))
	m, _ = update(t, m, runes("k"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	for range 4 {
		m, _ = update(t, m, runes("j"))
	}
	require.Equal(t, "Navigation", m.rows[m.cursor].Node.Label)
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"/admin/content", "/admin/settings"}, m.Expanded().Sorted())
}

func TestModel_CursorBounds(t *testing.T) {
	m := loaded(t, New(staticLoader(adminTree())))
	assert.Equal(t, []string{"Dashboard", "Content", "Settings"}, labels(m.rows))

	m, _ = update(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor)

	for range 5 {
		m, _ = update(t, m, runes("j"))
	}
	assert.Equal(t, 2, m.cursor)
}

func TestModel_CollapseAll(t *testing.T) {
	m := loaded(t, New(staticLoader(adminTree()), WithPath("/admin/settings/navigation")))
	require.Len(t, m.rows, 4)

	m, _ = update(t, m, runes("c"))
	assert.Len(t, m.rows, 3)
	assert.Equal(t, 0, m.cursor)
	assert.Empty(t, m.Expanded().Sorted())
}

func TestModel_StaleLoadIsDropped(t *testing.T) {
	var calls atomic.Int32
	loader := navigation.NewLoader(funcSource(func(context.Context) ([]nav.Node, error) {
		n := calls.Add(1)
		tree := adminTree()
		if n == 1 {
			tree = tree[:1]
		}
		return tree, nil
	}))

	m := New(loader)
	first := m.load()()
	second := m.load()()

	m, _ = update(t, m, first)
	assert.Empty(t, m.rows, "superseded result is not applied")
	assert.True(t, m.loading)

	m, _ = update(t, m, second)
	assert.Len(t, m.rows, 3)
	assert.False(t, m.loading)
}

func TestModel_LoadError(t *testing.T) {
	st := state.New()
	boom := errors.New("backend down")
	m := New(navigation.NewLoader(funcSource(func(context.Context) ([]nav.Node, error) {
		return nil, boom
	})), WithState(st))

	m = loaded(t, m)

	assert.ErrorIs(t, st.Err(loadKey), boom)
	assert.False(t, st.Loading(loadKey))
	require.Len(t, st.Notifications(), 1)
	assert.Equal(t, state.LevelError, st.Notifications()[0].Level)

	view := m.View()
	assert.Contains(t, view, "Navigation: backend down")
	assert.Contains(t, view, "load failed: backend down")

	m, cmd := update(t, m, runes("r"))
	assert.True(t, m.loading)
	assert.NotNil(t, cmd)
}

func TestModel_DismissNotification(t *testing.T) {
	st := state.New()
	st.Notify(state.LevelWarning, "Session expired", "sign in again")

	m := loaded(t, New(staticLoader(adminTree()), WithState(st)))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 8})

	assert.Contains(t, m.View(), "Session expired: sign in again")
	assert.Equal(t, 3, m.visibleRows(), "notices take room from the tree")

	m, _ = update(t, m, runes("x"))
	assert.Empty(t, st.Notifications())
	assert.NotContains(t, m.View(), "Session expired")
	assert.Equal(t, 4, m.visibleRows())

	// nothing left to dismiss
	m, _ = update(t, m, runes("x"))
	assert.Empty(t, st.Notifications())
}

func TestModel_NoticesAreCapped(t *testing.T) {
	st := state.New()
	for _, msg := range []string{"one", "two", "three", "four"} {
		st.Notify(state.LevelInfo, "", msg)
	}

	m := loaded(t, New(staticLoader(adminTree()), WithState(st)))
	require.Len(t, m.notices(), maxNotices)

	m, _ = update(t, m, runes("x"))
	assert.Len(t, st.Notifications(), 3, "dismiss drops the oldest")
	for _, n := range st.Notifications() {
		assert.NotEqual(t, "one", n.Message)
	}
}

func TestModel_SupersededLoadIsNotAnError(t *testing.T) {
	st := state.New()
	release := make(chan struct{})
	var calls atomic.Int32
	loader := navigation.NewLoader(funcSource(func(ctx context.Context) ([]nav.Node, error) {
		if calls.Add(1) == 1 {
			<-release
		}
		return adminTree(), nil
	}))

	m := New(loader, WithState(st))
	first := make(chan tea.Msg, 1)
	go func() { first <- m.load()() }()

	// the second load supersedes the first once that one returns
	for calls.Load() == 0 {
		runtime.Gosched()
	}
	second := m.load()()
	close(release)

	msg := (<-first).(treeLoadedMsg)
	assert.ErrorIs(t, msg.err, navigation.ErrSuperseded)
	assert.NoError(t, st.Err(loadKey))
	assert.Empty(t, st.Notifications())

	m, _ = update(t, m, msg)
	m, _ = update(t, m, second)
	assert.Len(t, m.rows, 3)
	assert.NoError(t, st.Err(loadKey))
	assert.Empty(t, st.Notifications())
}

func TestModel_Quit(t *testing.T) {
	m := loaded(t, New(staticLoader(adminTree())))

	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_WindowScrolls(t *testing.T) {
	m := loaded(t, New(staticLoader(adminTree()), WithPath("/admin/content/posts")))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 6})
	require.Equal(t, 2, m.visibleRows())

	assert.Equal(t, 1, m.offset)
	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 4, m.cursor)
	assert.Equal(t, 3, m.offset)
	assert.NotContains(t, m.View(), "Dashboard")
}
