// Package tui implements `blogadmin browse`, a terminal sidebar over the
// admin navigation tree.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/nav"
	"github.com/mchmarny/blogadmin/pkg/navigation"
	"github.com/mchmarny/blogadmin/pkg/state"
	"github.com/mchmarny/blogadmin/pkg/store"
)

const (
	// loadKey is the state.State key of tree loads.
	loadKey = "navigation"

	// maxNotices caps the notifications shown above the status line.
	maxNotices = 3
)

// treeLoadedMsg carries the result of one Loader.Load.
type treeLoadedMsg struct {
	tree []nav.Node
	gen  uint64
	err  error
}

// pathSavedMsg reports the outcome of persisting the last path.
type pathSavedMsg struct{ err error }

// Option configures a Model.
type Option func(*Model)

// WithStore persists the opened path under store.KeyLastPath.
func WithStore(st store.Store) Option {
	return func(m *Model) { m.store = st }
}

// WithState records loads and errors in st instead of a private State.
func WithState(st *state.State) Option {
	return func(m *Model) { m.state = st }
}

// WithPath sets the initially opened path.
func WithPath(p string) Option {
	return func(m *Model) { m.path = p }
}

// WithContext sets the parent context of tree loads.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the bubbletea model of the sidebar.
type Model struct {
	ctx     context.Context
	loader  *navigation.Loader
	tracker *nav.Tracker
	state   *state.State
	store   store.Store

	tree    []nav.Node
	rows    []nav.Row
	cursor  int
	offset  int
	path    string
	loading bool

	width  int
	height int

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  styles
}

// New returns a sidebar that reads its tree through loader.
func New(loader *navigation.Loader, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     context.Background(),
		loader:  loader,
		tracker: nav.NewTracker(),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		styles:  defaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.state == nil {
		m.state = state.New()
	}
	m.loading = true

	return m
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.spinner.Tick)
}

func (m Model) load() tea.Cmd {
	loader, st, ctx := m.loader, m.state, m.ctx
	return func() tea.Msg {
		var (
			tree []nav.Node
			gen  uint64
			err  error
		)
		// a superseded load is not a failure of the key
		_ = st.Track(loadKey, func() error {
			tree, gen, err = loader.Load(ctx)
			if errors.Is(err, navigation.ErrSuperseded) {
				return nil
			}
			return err
		})
		return treeLoadedMsg{tree: tree, gen: gen, err: err}
	}
}

func (m Model) savePath(p string) tea.Cmd {
	if m.store == nil {
		return nil
	}
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		return pathSavedMsg{err: st.Set(ctx, store.KeyLastPath, p)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.scroll()
		return m, nil

	case treeLoadedMsg:
		return m.applyTree(msg), nil

	case pathSavedMsg:
		if msg.err != nil {
			slog.Warn("failed to save last path", "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) applyTree(msg treeLoadedMsg) Model {
	if errors.Is(msg.err, navigation.ErrSuperseded) || !m.loader.Current(msg.gen) {
		slog.Debug("dropping stale tree", "gen", msg.gen)
		return m
	}

	m.loading = false
	if msg.err != nil {
		m.state.NotifyError("Navigation", msg.err)
		slog.Error("failed to load navigation", "error", msg.err)
		return m
	}

	m.tree = msg.tree
	m.tracker.Recompute(m.path, m.tree)
	m.refresh()
	m.selectPath()

	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.loader.Cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.scroll()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		m.scroll()

	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.selected(); ok && row.Node.IsGroup() {
			m.tracker.Toggle(row.Node.Href)
			m.refresh()
		}

	case key.Matches(msg, m.keys.CollapseAll):
		m.tracker.CollapseAll()
		m.refresh()
		m.cursor = 0
		m.offset = 0

	case key.Matches(msg, m.keys.Open):
		row, ok := m.selected()
		if !ok || row.Node.Href == "" {
			return m, nil
		}
		m.path = row.Node.Href
		if m.tracker.Navigate(m.path, m.tree) {
			m.refresh()
			m.selectPath()
			return m, m.savePath(m.path)
		}

	case key.Matches(msg, m.keys.Dismiss):
		if ns := m.state.Notifications(); len(ns) > 0 {
			m.state.Dismiss(ns[0].ID)
			m.scroll()
		}

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, tea.Batch(m.load(), m.spinner.Tick)
	}

	return m, nil
}

// refresh rebuilds the visible rows and keeps the cursor in range.
func (m *Model) refresh() {
	m.rows = nav.Flatten(m.tree, m.tracker.Expanded())
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.scroll()
}

// selectPath moves the cursor to the row of the open path, if visible.
func (m *Model) selectPath() {
	current := m.tracker.Path()
	for i, r := range m.rows {
		if nav.CleanPath(r.Node.Href) == current && r.Node.Href != "" {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m Model) selected() (nav.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nav.Row{}, false
	}
	return m.rows[m.cursor], true
}

// visibleRows is the number of tree lines that fit the window.
func (m Model) visibleRows() int {
	if m.height == 0 {
		return len(m.rows)
	}
	return max(m.height-4-len(m.notices()), 1)
}

// notices returns the newest pending notifications, oldest first.
func (m Model) notices() []state.Notification {
	ns := m.state.Notifications()
	if len(ns) > maxNotices {
		ns = ns[len(ns)-maxNotices:]
	}
	return ns
}

func (m *Model) scroll() {
	n := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("Navigation"))
	b.WriteString("\n")

	switch {
	case m.loading && len(m.rows) == 0:
		b.WriteString(fmt.Sprintf(" %s loading…\n", m.spinner.View()))
	case len(m.rows) == 0 && m.state.Err(loadKey) == nil:
		b.WriteString(m.styles.status.Render("no navigation items"))
		b.WriteString("\n")
	}

	end := min(m.offset+m.visibleRows(), len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor))
		b.WriteString("\n")
	}

	for _, n := range m.notices() {
		b.WriteString(m.renderNotice(n))
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderRow(r nav.Row, selected bool) string {
	var guide strings.Builder
	for i := 1; i < len(r.Branches); i++ {
		if r.Branches[i] {
			guide.WriteString("│ ")
		} else {
			guide.WriteString("  ")
		}
	}
	if r.Depth > 0 {
		if r.Last {
			guide.WriteString("└ ")
		} else {
			guide.WriteString("├ ")
		}
	}

	marker := "  "
	style := m.styles.leaf
	if r.Node.IsGroup() {
		marker = "▸ "
		if r.Expanded {
			marker = "▾ "
		}
		style = m.styles.group
	}
	if r.Node.Href != "" && nav.CleanPath(r.Node.Href) == m.tracker.Path() {
		style = m.styles.active
	}

	label := marker + r.Node.Label
	if selected {
		label = m.styles.selected.Render(label)
	} else {
		label = style.Render(label)
	}

	return " " + m.styles.guide.Render(guide.String()) + label
}

func (m Model) renderNotice(n state.Notification) string {
	text := n.Message
	if n.Title != "" {
		text = n.Title + ": " + n.Message
	}
	style, ok := m.styles.notices[n.Level]
	if !ok {
		style = m.styles.status
	}
	return style.Render("● " + text)
}

func (m Model) statusLine() string {
	if err := m.state.Err(loadKey); err != nil {
		return m.styles.err.Render("load failed: " + api.Message(err))
	}

	parts := make([]string, 0, 4)
	for _, n := range nav.Breadcrumb(m.tracker.Path(), m.tree) {
		parts = append(parts, n.Label)
	}
	status := m.tracker.Path()
	if len(parts) > 0 {
		status = strings.Join(parts, " › ")
	}
	if m.loading {
		status = lipgloss.JoinHorizontal(lipgloss.Left, m.spinner.View(), " ", status)
	}

	return m.styles.status.Render(status)
}

// Path returns the currently opened path.
func (m Model) Path() string {
	return m.tracker.Path()
}

// Expanded returns the hrefs of the expanded groups.
func (m Model) Expanded() nav.Set {
	return m.tracker.Expanded()
}
