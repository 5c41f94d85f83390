package materialize

import (
	stderrors "errors"
	"io"
	"sort"
	"sync"

	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

// Graph is a materialized scope graph. Lookups are safe for concurrent use.
// Lookups that race with or follow Close fail with scope.ErrClosed.
type Graph struct {
	id       string
	root     scope.Loader
	scopes   map[string]*scope.Scope
	orphans  []*scope.Scope
	handlers []io.Closer // release order

	mu     sync.Mutex
	closed bool
}

// ID returns the unique identifier of this graph instance.
func (g *Graph) ID() string { return g.id }

// Root returns the external root context orphan scopes delegate to.
func (g *Graph) Root() scope.Loader { return g.root }

// Scope returns the scope called name.
func (g *Graph) Scope(name string) (*scope.Scope, bool) {
	s, ok := g.scopes[name]
	return s, ok
}

// Scopes returns every scope sorted by name.
func (g *Graph) Scopes() []*scope.Scope {
	out := make([]*scope.Scope, 0, len(g.scopes))
	for _, s := range g.scopes {
		out = append(out, s)
	}
	sortScopes(out)
	return out
}

// Orphans returns the scopes without an in-graph parent, sorted by name.
func (g *Graph) Orphans() []*scope.Scope {
	return append([]*scope.Scope(nil), g.orphans...)
}

// Len returns the number of scopes.
func (g *Graph) Len() int { return len(g.scopes) }

// Handlers returns the number of resources registered during source
// resolution.
func (g *Graph) Handlers() int { return len(g.handlers) }

// Close releases the artifacts of every scope and every registered handler.
// All releases are attempted; failures are aggregated into a
// [errors.CloseError]. Calls are serialized and only the first one releases
// anything.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true

	var errs []error
	for _, s := range g.Scopes() {
		errs = appendCloseErr(errs, s.Close())
	}
	for _, h := range g.handlers {
		errs = appendCloseErr(errs, h.Close())
	}
	if len(errs) > 0 {
		return &errors.CloseError{Errs: errs}
	}
	return nil
}

// appendCloseErr appends err, flattening nested close aggregates.
func appendCloseErr(errs []error, err error) []error {
	if err == nil {
		return errs
	}
	var ce *errors.CloseError
	if stderrors.As(err, &ce) {
		return append(errs, ce.Errs...)
	}
	return append(errs, err)
}

func sortScopes(s []*scope.Scope) {
	sort.Slice(s, func(i, j int) bool { return s[i].Name() < s[j].Name() })
}
