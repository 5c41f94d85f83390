package source

import (
	"context"
	"fmt"
	"net/url"

	"github.com/charmbracelet/log"
)

// Finder locates resources. The fallback context of classpath
// specifications implements it; every scope.Loader does.
type Finder interface {
	ResolveResource(ctx context.Context, name string) (*url.URL, bool, error)
}

// Artifacts is the result of resolving one source specification.
type Artifacts interface {
	// URLs returns the artifact locations in order.
	URLs() []*url.URL
}

// Locations is a plain list of artifact locations.
type Locations []*url.URL

// URLs returns the locations.
func (l Locations) URLs() []*url.URL { return l }

func (l Locations) String() string { return fmt.Sprint([]*url.URL(l)) }

// Resolver turns a source specification into artifact locations.
type Resolver interface {
	// Resolve returns ok == false when the resolver does not handle spec.
	Resolve(ctx context.Context, spec string, fallback Finder) (Artifacts, bool, error)
}

// Named is implemented by resolvers that report a name for diagnostics.
type Named interface {
	Name() string
}

// NameOf returns the diagnostic name of r.
func NameOf(r Resolver) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", r)
}

// Chain tries resolvers in order.
type Chain []Resolver

// Resolve returns the result of the first resolver that handles spec and
// that resolver. ok is false when every resolver declined.
func (c Chain) Resolve(ctx context.Context, spec string, fallback Finder) (Artifacts, Resolver, bool, error) {
	for _, r := range c {
		a, ok, err := r.Resolve(ctx, spec, fallback)
		if err != nil {
			return nil, r, false, fmt.Errorf("resolver %s: %w", NameOf(r), err)
		}
		if ok {
			return a, r, true, nil
		}
	}
	return nil, nil, false, nil
}

// Registry holds externally supplied resolvers in registration order.
type Registry struct {
	resolvers []Resolver
}

// NewRegistry creates a registry holding resolvers.
func NewRegistry(resolvers ...Resolver) *Registry {
	r := &Registry{}
	for _, res := range resolvers {
		r.Register(res)
	}
	return r
}

// Register appends a resolver. Nil resolvers are ignored.
func (r *Registry) Register(res Resolver) {
	if res != nil {
		r.resolvers = append(r.resolvers, res)
	}
}

// Resolvers returns the registered resolvers, without the builtin one.
func (r *Registry) Resolvers() []Resolver {
	if r == nil {
		return nil
	}
	return append([]Resolver(nil), r.resolvers...)
}

// Chain returns the registered resolvers followed by a [Default] resolver
// logging to logger.
func (r *Registry) Chain(logger *log.Logger) Chain {
	return append(Chain(r.Resolvers()), NewDefault(logger))
}
