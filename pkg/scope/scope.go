package scope

import (
	"context"
	stderrors "errors"
	"iter"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/scopegraph/pkg/artifact"
	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/importmatch"
	"github.com/matzehuels/scopegraph/pkg/observability"
)

// ErrClosed is returned by lookups on a scope whose artifacts were released.
var ErrClosed = stderrors.New("scope is closed")

// Loader resolves unit and resource names. Both scopes and the external
// root context implement it.
//
// A name that cannot be found is reported with ok == false and a nil error.
type Loader interface {
	ResolveUnit(ctx context.Context, name string) (*artifact.Unit, bool, error)
	ResolveResource(ctx context.Context, name string) (*url.URL, bool, error)
	ResolveResources(ctx context.Context, name string) iter.Seq2[*url.URL, error]
}

// DefineFunc turns the bytes of a unit artifact into a loaded unit.
// It is called at most once per scope and unit name.
type DefineFunc func(ctx context.Context, scope, name string, data []byte, loc *url.URL) (*artifact.Unit, error)

// DefineUnit is the default DefineFunc. It wraps the raw bytes.
func DefineUnit(_ context.Context, scope, name string, data []byte, loc *url.URL) (*artifact.Unit, error) {
	return &artifact.Unit{Name: name, Location: loc, Data: data, Scope: scope}, nil
}

// Link is an import link: names accepted by the matcher are looked up in the
// target scope's own artifacts. A link is created unbound and attached to
// its target once every scope of the graph exists.
type Link struct {
	matcher importmatch.Matcher
	target  atomic.Pointer[Scope]
}

// NewLink creates an unbound link for matcher.
func NewLink(matcher importmatch.Matcher) *Link {
	return &Link{matcher: matcher}
}

// Bind attaches the link to its target scope.
func (l *Link) Bind(target *Scope) { l.target.Store(target) }

// Target returns the bound target, or nil before Bind.
func (l *Link) Target() *Scope { return l.target.Load() }

// Pattern returns the import pattern.
func (l *Link) Pattern() string { return l.matcher.Pattern() }

// accepts reports whether the link is bound and covers name.
func (l *Link) accepts(name string) (*Scope, bool) {
	t := l.target.Load()
	return t, t != nil && l.matcher.Accepts(name)
}

// Config configures a new Scope.
type Config struct {
	Name            string
	Parent          *Scope        // In-graph parent; nil for orphan scopes
	Root            Loader        // Used instead of a parent by orphan scopes; nil means [Empty]
	Artifacts       *artifact.Set // Own artifacts; nil means none
	Strategy        Strategy      // nil means [Default]
	UnitImports     []*Link
	ResourceImports []*Link
	Define          DefineFunc  // nil means [DefineUnit]
	Logger          *log.Logger // nil means log.Default()
}

// Scope is a materialized loading scope. It is safe for concurrent use.
type Scope struct {
	name            string
	parent          *Scope
	root            Loader
	artifacts       *artifact.Set
	strategy        Strategy
	unitImports     []*Link
	resourceImports []*Link
	define          DefineFunc
	logger          *log.Logger

	mu       sync.RWMutex
	children map[string]*Scope
	defined  map[string]*artifact.Unit // units read from own artifacts
	resolved map[string]*artifact.Unit // results of top-level lookups

	defineFlight singleflight.Group

	closed atomic.Bool
}

// New creates a scope and registers it as a child of its parent.
func New(cfg Config) (*Scope, error) {
	if err := errors.ValidateNodeName(cfg.Name); err != nil {
		return nil, err
	}
	s := &Scope{
		name:            cfg.Name,
		parent:          cfg.Parent,
		root:            cfg.Root,
		artifacts:       cfg.Artifacts,
		strategy:        cfg.Strategy,
		unitImports:     cfg.UnitImports,
		resourceImports: cfg.ResourceImports,
		define:          cfg.Define,
		logger:          cfg.Logger,
		children:        make(map[string]*Scope),
		defined:         make(map[string]*artifact.Unit),
		resolved:        make(map[string]*artifact.Unit),
	}
	if s.root == nil {
		s.root = Empty()
	}
	if s.artifacts == nil {
		s.artifacts = artifact.NewSet()
	}
	if s.strategy == nil {
		s.strategy = Default
	}
	if s.define == nil {
		s.define = DefineUnit
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.parent != nil {
		if err := s.parent.addChild(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name returns the scope name.
func (s *Scope) Name() string { return s.name }

// Parent returns the in-graph parent, or nil for an orphan scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Strategy returns the resolution strategy.
func (s *Scope) Strategy() Strategy { return s.strategy }

// Locations returns the scope's own artifact locations in search order.
func (s *Scope) Locations() []*url.URL { return s.artifacts.Locations() }

// UnitImports returns the unit import links in declaration order.
func (s *Scope) UnitImports() []*Link { return s.unitImports }

// ResourceImports returns the resource import links in declaration order.
func (s *Scope) ResourceImports() []*Link { return s.resourceImports }

// Child returns the direct child called name.
func (s *Scope) Child(name string) (*Scope, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.children[name]
	return c, ok
}

// Children returns the direct children sorted by name.
func (s *Scope) Children() []*Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Scope, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (s *Scope) addChild(c *Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.children[c.name]; ok {
		return errors.New(errors.ErrCodeGraphStructure, "scope %q already has a child %q", s.name, c.name)
	}
	s.children[c.name] = c
	return nil
}

// Close releases the scope's own artifacts. Later lookups fail with
// [ErrClosed]. Closing twice is a no-op.
func (s *Scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.artifacts.Close()
}

// ResolveUnit resolves name using the scope's strategy. A successful
// top-level result is memoized, so every later caller observes the same
// unit. Lookups delegated from other scopes skip scopes already on the
// lookup chain, which makes parent and import cycles terminate.
func (s *Scope) ResolveUnit(ctx context.Context, name string) (*artifact.Unit, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	if u := s.memoized(s.resolved, name); u != nil {
		return u, true, nil
	}
	start := time.Now()
	top := !nested(ctx)
	u, ok, err := s.strategy.ResolveUnit(enter(ctx, s), name, lookup{s})
	if err != nil || !ok {
		u = nil
	} else if top {
		u = s.remember(s.resolved, name, u)
	}
	observability.Resolve().OnUnitResolved(ctx, s.name, u != nil, time.Since(start))
	return u, u != nil, err
}

// ResolveResource resolves name to the first matching location.
func (s *Scope) ResolveResource(ctx context.Context, name string) (*url.URL, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	u, ok, err := s.strategy.ResolveResource(enter(ctx, s), name, lookup{s})
	observability.Resolve().OnResourceResolved(ctx, s.name, ok)
	return u, ok, err
}

// ResolveResources yields every location of name from all three sources in
// strategy order. The sequence is recomputed on every iteration.
func (s *Scope) ResolveResources(ctx context.Context, name string) iter.Seq2[*url.URL, error] {
	return func(yield func(*url.URL, error) bool) {
		if s.closed.Load() {
			yield(nil, ErrClosed)
			return
		}
		for u, err := range s.strategy.ResolveResources(enter(ctx, s), name, lookup{s}) {
			if !yield(u, err) {
				return
			}
		}
	}
}

// DefinedUnits returns the names of units read from the scope's own
// artifacts so far, sorted.
func (s *Scope) DefinedUnits() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.defined))
	for name := range s.defined {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// selfUnit looks name up in the scope's own artifacts, defining the unit on
// first success. Concurrent callers for the same name share one definition;
// it runs detached from any single caller's cancellation, and each caller
// stops waiting when its own ctx is done.
func (s *Scope) selfUnit(ctx context.Context, name string) (*artifact.Unit, bool, error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}
	if u := s.memoized(s.defined, name); u != nil {
		return u, true, nil
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := s.defineFlight.DoChan(name, func() (any, error) {
		// A flight for name may have completed between the check above and DoChan.
		if u := s.memoized(s.defined, name); u != nil {
			return u, nil
		}
		u, err := s.defineFromArtifacts(flightCtx, name)
		if err != nil || u == nil {
			return nil, err
		}
		return s.remember(s.defined, name, u), nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		u, _ := res.Val.(*artifact.Unit)
		return u, u != nil, nil
	}
}

func (s *Scope) defineFromArtifacts(ctx context.Context, name string) (*artifact.Unit, error) {
	data, loc, ok, err := s.artifacts.Open(ctx, artifact.UnitPath(name))
	if err != nil || !ok {
		return nil, err
	}
	u, err := s.define(ctx, s.name, name, data, loc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "define unit %q in scope %q", name, s.name)
	}
	s.logger.Debug("Defined unit", "scope", s.name, "unit", name, "location", loc)
	observability.Resolve().OnUnitDefined(ctx, s.name, name, len(data))
	return u, nil
}

// remember stores u under name unless a unit is already there, and returns
// the stored unit.
func (s *Scope) remember(memo map[string]*artifact.Unit, name string, u *artifact.Unit) *artifact.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := memo[name]; ok {
		return prev
	}
	memo[name] = u
	return u
}

func (s *Scope) memoized(memo map[string]*artifact.Unit, name string) *artifact.Unit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memo[name]
}

// lookup implements Lookup for a scope.
type lookup struct{ s *Scope }

// parent returns the loader consulted for parent lookups, or [Empty] when
// the parent is already on the lookup chain.
func (l lookup) parent(ctx context.Context) Loader {
	if p := l.s.parent; p != nil {
		if visiting(ctx, p) {
			return Empty()
		}
		return p
	}
	return l.s.root
}

// targets returns the bound import targets covering name that are not
// already on the lookup chain.
func (l lookup) targets(ctx context.Context, links []*Link, name string) []*Scope {
	var out []*Scope
	for _, link := range links {
		if target, ok := link.accepts(name); ok && !visiting(ctx, target) {
			out = append(out, target)
		}
	}
	return out
}

func (l lookup) UnitInParent(ctx context.Context, name string) (*artifact.Unit, bool, error) {
	return l.parent(ctx).ResolveUnit(ctx, name)
}

func (l lookup) UnitInSelf(ctx context.Context, name string) (*artifact.Unit, bool, error) {
	return l.s.selfUnit(ctx, name)
}

func (l lookup) UnitInImports(ctx context.Context, name string) (*artifact.Unit, bool, error) {
	for _, target := range l.targets(ctx, l.s.unitImports, name) {
		u, found, err := target.ResolveUnit(ctx, name)
		if err != nil {
			return nil, false, err
		}
		if found {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (l lookup) ResourceInParent(ctx context.Context, name string) (*url.URL, bool, error) {
	return l.parent(ctx).ResolveResource(ctx, name)
}

func (l lookup) ResourceInSelf(ctx context.Context, name string) (*url.URL, bool, error) {
	return l.s.artifacts.Find(ctx, name)
}

func (l lookup) ResourceInImports(ctx context.Context, name string) (*url.URL, bool, error) {
	for _, target := range l.targets(ctx, l.s.resourceImports, name) {
		u, found, err := target.ResolveResource(ctx, name)
		if err != nil {
			return nil, false, err
		}
		if found {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (l lookup) ResourcesInParent(ctx context.Context, name string) iter.Seq2[*url.URL, error] {
	return l.parent(ctx).ResolveResources(ctx, name)
}

func (l lookup) ResourcesInSelf(ctx context.Context, name string) iter.Seq2[*url.URL, error] {
	return l.s.artifacts.FindAll(ctx, name)
}

func (l lookup) ResourcesInImports(ctx context.Context, name string) iter.Seq2[*url.URL, error] {
	targets := l.targets(ctx, l.s.resourceImports, name)
	if len(targets) == 0 {
		return emptySeq
	}
	seqs := make([]iter.Seq2[*url.URL, error], len(targets))
	for i, target := range targets {
		seqs[i] = target.ResolveResources(ctx, name)
	}
	return Concat(seqs...)
}
