package materialize

import (
	"context"
	"io"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/scopegraph/pkg/artifact"
	"github.com/matzehuels/scopegraph/pkg/definition"
	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/observability"
	"github.com/matzehuels/scopegraph/pkg/scope"
	"github.com/matzehuels/scopegraph/pkg/source"
)

// Options configures a Materializer.
type Options struct {
	Resolvers *source.Registry // External resolvers tried before the default one
	Opener    *artifact.Opener // Opens resolved locations; nil opens local files only
	Define    scope.DefineFunc // Unit definition hook; nil means scope.DefineUnit
	Logger    *log.Logger      // nil means log.Default()
}

// Materializer builds one Graph from one definition.
type Materializer struct {
	opts Options
	used atomic.Bool
}

// New creates a materializer.
func New(opts Options) *Materializer {
	if opts.Resolvers == nil {
		opts.Resolvers = source.NewRegistry()
	}
	if opts.Opener == nil {
		opts.Opener = &artifact.Opener{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Materializer{opts: opts}
}

// Build materializes def with a fresh Materializer.
func Build(ctx context.Context, def *definition.Graph, opts Options) (*Graph, error) {
	return New(opts).Materialize(ctx, def)
}

// Materialize validates def and builds its scopes. It may be called once;
// later calls fail with ALREADY_MATERIALIZED. The definition is frozen.
func (m *Materializer) Materialize(ctx context.Context, def *definition.Graph) (*Graph, error) {
	if def == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph definition is nil")
	}
	if !m.used.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeAlreadyMaterialized, "materializer was already used")
	}
	def.Freeze()

	start := time.Now()
	observability.Materialize().OnMaterializeStart(ctx, def.Len())

	g, err := m.materialize(ctx, def)

	scopes := 0
	if g != nil {
		scopes = len(g.scopes)
	}
	observability.Materialize().OnMaterializeComplete(ctx, scopes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	m.opts.Logger.Debug("Materialized graph", "id", g.id, "scopes", scopes, "duration", time.Since(start))
	return g, nil
}

func (m *Materializer) materialize(ctx context.Context, def *definition.Graph) (*Graph, error) {
	b := &builder{
		opts:   m.opts,
		def:    def,
		scopes: make(map[string]*scope.Scope),
	}
	// Closeable resolvers are owned from here on, even if validation fails.
	b.chain = m.opts.Resolvers.Chain(m.opts.Logger)
	for _, r := range b.chain {
		if c, ok := r.(io.Closer); ok {
			b.handlers = append(b.handlers, c)
		}
	}

	if err := b.run(ctx); err != nil {
		e := errors.Wrap(errors.ErrCodeMaterialization, err, "materialize graph")
		if cerr := b.cleanup(); cerr != nil {
			m.opts.Logger.Error("Cleanup after failed materialization", "err", cerr)
			e.Suppress(cerr.Errs...)
		}
		return nil, e
	}
	return b.graph(), nil
}

// pendingLink is an import link waiting for its target scope.
type pendingLink struct {
	link   *scope.Link
	target string
}

// builder holds the state of one materialization.
type builder struct {
	opts  Options
	def   *definition.Graph
	chain source.Chain

	scopes   map[string]*scope.Scope
	built    []*scope.Scope // construction order
	pending  []pendingLink
	handlers []io.Closer // registration order
	released []error     // close failures of resources dropped during the build
}

func (b *builder) run(ctx context.Context) error {
	if res := definition.Validate(b.def); !res.OK {
		return res.Err()
	}
	for _, n := range b.def.Nodes() {
		if _, err := b.build(ctx, n); err != nil {
			return err
		}
	}
	return b.bind()
}

// build returns the scope of n, building its ancestors first.
func (b *builder) build(ctx context.Context, n *definition.Node) (*scope.Scope, error) {
	if s, ok := b.scopes[n.Name()]; ok {
		return s, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var parent *scope.Scope
	if p := n.Parent(); p != nil {
		var err error
		if parent, err = b.build(ctx, p); err != nil {
			return nil, err
		}
	}

	locs, err := b.resolveSources(ctx, n)
	if err != nil {
		return nil, err
	}
	set, err := b.opts.Opener.OpenSet(ctx, locs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMaterialization, err, "open artifacts of node %q", n.Name())
	}

	s, err := scope.New(scope.Config{
		Name:            n.Name(),
		Parent:          parent,
		Root:            b.def.Root(),
		Artifacts:       set,
		Strategy:        n.EffectiveStrategy(),
		UnitImports:     b.links(n.UnitImports()),
		ResourceImports: b.links(n.ResourceImports()),
		Define:          b.opts.Define,
		Logger:          b.opts.Logger,
	})
	if err != nil {
		b.released = appendCloseErr(b.released, set.Close())
		return nil, err
	}
	b.scopes[n.Name()] = s
	b.built = append(b.built, s)

	b.opts.Logger.Debug("Built scope", "scope", n.Name(), "strategy", s.Strategy().Name(), "locations", set.Len())
	return s, nil
}

// resolveSources resolves every source of n, in declaration order.
func (b *builder) resolveSources(ctx context.Context, n *definition.Node) ([]*url.URL, error) {
	var locs []*url.URL
	for _, spec := range n.Sources() {
		a, r, ok, err := b.chain.Resolve(ctx, spec, b.def.Root())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMaterialization, err, "resolve source [%s] of node %q", spec, n.Name())
		}
		if !ok {
			return nil, &errors.UnresolvedSourceError{Node: n.Name(), Spec: spec}
		}
		if c, ok := a.(io.Closer); ok {
			b.handlers = append(b.handlers, c)
		}
		urls := a.URLs()
		b.opts.Logger.Debug("Resolved source", "node", n.Name(), "source", spec, "resolver", source.NameOf(r), "locations", len(urls))
		observability.Materialize().OnSourceResolved(ctx, n.Name(), source.NameOf(r), len(urls))
		locs = append(locs, urls...)
	}
	return locs, nil
}

// links creates unbound links for imports and records their targets.
func (b *builder) links(imports []definition.Import) []*scope.Link {
	if len(imports) == 0 {
		return nil
	}
	out := make([]*scope.Link, len(imports))
	for i, imp := range imports {
		l := scope.NewLink(imp.Matcher)
		b.pending = append(b.pending, pendingLink{link: l, target: imp.Target.Name()})
		out[i] = l
	}
	return out
}

// bind attaches every pending link to its now existing target.
func (b *builder) bind() error {
	for _, p := range b.pending {
		target, ok := b.scopes[p.target]
		if !ok {
			return errors.New(errors.ErrCodeGraphStructure, "import target %q was not built", p.target)
		}
		p.link.Bind(target)
	}
	b.pending = nil
	return nil
}

// cleanup releases the scopes built so far, newest first, then the
// handlers in reverse registration order. Failures recorded while building
// come first.
func (b *builder) cleanup() *errors.CloseError {
	errs := b.released
	for i := len(b.built) - 1; i >= 0; i-- {
		errs = appendCloseErr(errs, b.built[i].Close())
	}
	for i := len(b.handlers) - 1; i >= 0; i-- {
		errs = appendCloseErr(errs, b.handlers[i].Close())
	}
	if len(errs) == 0 {
		return nil
	}
	return &errors.CloseError{Errs: errs}
}

func (b *builder) graph() *Graph {
	g := &Graph{
		id:       uuid.NewString(),
		root:     b.def.Root(),
		scopes:   b.scopes,
		handlers: make([]io.Closer, len(b.handlers)),
	}
	for _, s := range b.built {
		if s.Parent() == nil {
			g.orphans = append(g.orphans, s)
		}
	}
	sortScopes(g.orphans)
	for i, h := range b.handlers {
		g.handlers[len(b.handlers)-1-i] = h
	}
	return g
}
