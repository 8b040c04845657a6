package navigation

import (
	"context"
	"errors"
	"sync"

	"github.com/mchmarny/blogadmin/pkg/nav"
)

// ErrSuperseded is returned by Loader.Load when a newer load started
// before this one finished. Its result must not be applied.
var ErrSuperseded = errors.New("navigation load superseded")

// Loader fetches trees from a Source so that only the latest request wins.
// Every Load gets a new generation and cancels the one before it.
type Loader struct {
	src Source

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewLoader returns a loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Load fetches the tree and returns it with its generation. Callers that
// apply the result later must check Current(gen) at that point.
func (l *Loader) Load(ctx context.Context) ([]nav.Node, uint64, error) {
	ctx, gen := l.begin(ctx)

	tree, err := l.src.Tree(ctx)

	if !l.Current(gen) {
		return nil, gen, ErrSuperseded
	}
	l.finish(gen)

	if err != nil {
		return nil, gen, err
	}
	return tree, gen, nil
}

// Current reports whether gen is the most recent generation.
func (l *Loader) Current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen == l.gen
}

// Cancel aborts the in-flight load, if any, and invalidates its result.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader) begin(ctx context.Context) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	l.gen++
	l.cancel = cancel

	return ctx, l.gen
}

func (l *Loader) finish(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen == l.gen && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
