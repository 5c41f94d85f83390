package scope

import (
	"context"
	"iter"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/matzehuels/scopegraph/pkg/artifact"
	"github.com/matzehuels/scopegraph/pkg/errors"
)

// Lookup exposes the three resolution sources of a scope to a [Strategy].
type Lookup interface {
	UnitInParent(ctx context.Context, name string) (*artifact.Unit, bool, error)
	UnitInSelf(ctx context.Context, name string) (*artifact.Unit, bool, error)
	UnitInImports(ctx context.Context, name string) (*artifact.Unit, bool, error)

	ResourceInParent(ctx context.Context, name string) (*url.URL, bool, error)
	ResourceInSelf(ctx context.Context, name string) (*url.URL, bool, error)
	ResourceInImports(ctx context.Context, name string) (*url.URL, bool, error)

	ResourcesInParent(ctx context.Context, name string) iter.Seq2[*url.URL, error]
	ResourcesInSelf(ctx context.Context, name string) iter.Seq2[*url.URL, error]
	ResourcesInImports(ctx context.Context, name string) iter.Seq2[*url.URL, error]
}

// Strategy decides the order in which a scope consults its sources.
type Strategy interface {
	// Name identifies the strategy in definitions and diagnostics.
	Name() string
	ResolveUnit(ctx context.Context, name string, l Lookup) (*artifact.Unit, bool, error)
	ResolveResource(ctx context.Context, name string, l Lookup) (*url.URL, bool, error)
	ResolveResources(ctx context.Context, name string, l Lookup) iter.Seq2[*url.URL, error]
}

// Source is one of the three places a scope looks for a name.
type Source byte

// Resolution sources.
const (
	Parent  Source = 'P'
	Self    Source = 'S'
	Imports Source = 'I'
)

// Order is a builtin strategy: a permutation of the three sources.
type Order [3]Source

// Builtin strategies, one per ordering of {Parent, Self, Imports}.
var (
	PIS = Order{Parent, Imports, Self}
	PSI = Order{Parent, Self, Imports}
	SIP = Order{Self, Imports, Parent}
	SPI = Order{Self, Parent, Imports}
	IPS = Order{Imports, Parent, Self}
	ISP = Order{Imports, Self, Parent}
)

// Default is the strategy used when neither a node nor its graph names one.
var Default Strategy = SPI

// Builtins returns the six builtin strategies.
func Builtins() []Strategy {
	return []Strategy{PIS, PSI, SIP, SPI, IPS, ISP}
}

// Name returns the three-letter code of the ordering, e.g. "SPI".
func (o Order) Name() string { return string([]byte{byte(o[0]), byte(o[1]), byte(o[2])}) }

func (o Order) String() string { return o.Name() }

func (o Order) ResolveUnit(ctx context.Context, name string, l Lookup) (*artifact.Unit, bool, error) {
	for _, src := range o {
		var (
			u   *artifact.Unit
			ok  bool
			err error
		)
		switch src {
		case Parent:
			u, ok, err = l.UnitInParent(ctx, name)
		case Self:
			u, ok, err = l.UnitInSelf(ctx, name)
		case Imports:
			u, ok, err = l.UnitInImports(ctx, name)
		}
		if err != nil || ok {
			return u, ok, err
		}
	}
	return nil, false, nil
}

func (o Order) ResolveResource(ctx context.Context, name string, l Lookup) (*url.URL, bool, error) {
	for _, src := range o {
		var (
			u   *url.URL
			ok  bool
			err error
		)
		switch src {
		case Parent:
			u, ok, err = l.ResourceInParent(ctx, name)
		case Self:
			u, ok, err = l.ResourceInSelf(ctx, name)
		case Imports:
			u, ok, err = l.ResourceInImports(ctx, name)
		}
		if err != nil || ok {
			return u, ok, err
		}
	}
	return nil, false, nil
}

func (o Order) ResolveResources(ctx context.Context, name string, l Lookup) iter.Seq2[*url.URL, error] {
	seqs := make([]iter.Seq2[*url.URL, error], 0, len(o))
	for _, src := range o {
		switch src {
		case Parent:
			seqs = append(seqs, l.ResourcesInParent(ctx, name))
		case Self:
			seqs = append(seqs, l.ResourcesInSelf(ctx, name))
		case Imports:
			seqs = append(seqs, l.ResourcesInImports(ctx, name))
		}
	}
	return Concat(seqs...)
}

// valid reports whether o is a permutation of the three sources.
func (o Order) valid() bool {
	s := []Source{o[0], o[1], o[2]}
	slices.Sort(s)
	return slices.Equal(s, []Source{Imports, Parent, Self})
}

// ParseOrder parses a three-letter strategy code such as "psi".
func ParseOrder(code string) (Order, bool) {
	code = strings.ToUpper(code)
	if len(code) != 3 {
		return Order{}, false
	}
	o := Order{Source(code[0]), Source(code[1]), Source(code[2])}
	return o, o.valid()
}

// Registry maps strategy names to strategies. It starts with the six
// builtins; custom strategies are added with Register. A Registry is
// safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates a registry holding the builtin strategies.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range Builtins() {
		r.strategies[s.Name()] = s
	}
	return r
}

// Register adds a custom strategy. Names are case-insensitive and must not
// collide with a registered strategy.
func (r *Registry) Register(s Strategy) error {
	if s == nil || s.Name() == "" {
		return errors.New(errors.ErrCodeInvalidStrategy, "strategy must have a name")
	}
	key := strings.ToUpper(s.Name())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[key]; ok {
		return errors.New(errors.ErrCodeInvalidStrategy, "strategy %q already registered", s.Name())
	}
	r.strategies[key] = s
	return nil
}

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (Strategy, error) {
	r.mu.RLock()
	s, ok := r.strategies[strings.ToUpper(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidStrategy, "unknown loading strategy %q", name)
	}
	return s, nil
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
