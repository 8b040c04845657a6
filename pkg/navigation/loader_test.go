package navigation

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/blogadmin/pkg/nav"
)

// gatedSource blocks each call until released and reports its own call number.
type gatedSource struct {
	calls   chan int
	release chan struct{}
	n       int
}

func newGatedSource() *gatedSource {
	return &gatedSource{calls: make(chan int, 4), release: make(chan struct{})}
}

func (g *gatedSource) Tree(ctx context.Context) ([]nav.Node, error) {
	g.n++
	id := g.n
	g.calls <- id

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
	}
	return []nav.Node{{ID: nav.ID(strconv.Itoa(id)), Href: "/gen"}}, nil
}

type staticSource []nav.Node

func (s staticSource) Tree(context.Context) ([]nav.Node, error) {
	return s, nil
}

func TestLoader_Load(t *testing.T) {
	l := NewLoader(staticSource{{ID: "1", Href: "/a"}})

	tree, gen, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.True(t, l.Current(gen))

	_, gen2, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Greater(t, gen2, gen)
	assert.False(t, l.Current(gen))
}

func TestLoader_StaleLoadIsSuperseded(t *testing.T) {
	src := newGatedSource()
	l := NewLoader(src)

	type result struct {
		tree []nav.Node
		gen  uint64
		err  error
	}
	first := make(chan result, 1)

	go func() {
		tree, gen, err := l.Load(context.Background())
		first <- result{tree, gen, err}
	}()
	require.Equal(t, 1, <-src.calls)

	second := make(chan result, 1)
	go func() {
		tree, gen, err := l.Load(context.Background())
		second <- result{tree, gen, err}
	}()
	require.Equal(t, 2, <-src.calls)

	// first was canceled by the second load
	r1 := <-first
	assert.ErrorIs(t, r1.err, ErrSuperseded)
	assert.Nil(t, r1.tree)

	close(src.release)

	r2 := <-second
	require.NoError(t, r2.err)
	assert.True(t, l.Current(r2.gen))
	assert.Equal(t, nav.ID("2"), r2.tree[0].ID)
}

func TestLoader_Cancel(t *testing.T) {
	src := newGatedSource()
	l := NewLoader(src)

	done := make(chan error, 1)
	go func() {
		_, _, err := l.Load(context.Background())
		done <- err
	}()
	<-src.calls

	l.Cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("load was not canceled")
	}
}

func TestLoader_SourceError(t *testing.T) {
	boom := errors.New("boom")
	l := NewLoader(errSource{boom})

	_, gen, err := l.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, l.Current(gen))
}

type errSource struct{ err error }

func (e errSource) Tree(context.Context) ([]nav.Node, error) {
	return nil, e.err
}
