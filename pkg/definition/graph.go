package definition

import (
	"sort"

	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/importmatch"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

// Graph is a mutable graph definition.
type Graph struct {
	nodes           map[string]*Node
	defaultStrategy scope.Strategy
	root            scope.Loader
	strategies      *scope.Registry
	frozen          bool
}

// New creates an empty definition. Strategy names are resolved through
// strategies; nil means the builtin strategies only.
func New(strategies *scope.Registry) *Graph {
	if strategies == nil {
		strategies = scope.NewRegistry()
	}
	return &Graph{
		nodes:           make(map[string]*Node),
		defaultStrategy: scope.Default,
		root:            scope.Empty(),
		strategies:      strategies,
	}
}

// Node returns the node called name, creating it if needed. Calling Node
// twice with the same name returns the same *Node.
func (g *Graph) Node(name string) (*Node, error) {
	if n, ok := g.nodes[name]; ok {
		return n, nil
	}
	return g.AddNode(name)
}

// AddNode creates a node and fails if the name is taken.
func (g *Graph) AddNode(name string) (*Node, error) {
	if err := g.checkMutable(); err != nil {
		return nil, err
	}
	if err := errors.ValidateNodeName(name); err != nil {
		return nil, err
	}
	if _, ok := g.nodes[name]; ok {
		return nil, errors.New(errors.ErrCodeGraphStructure, "node %q already exists", name)
	}
	n := &Node{name: name, graph: g, seen: make(map[string]struct{})}
	g.nodes[name] = n
	return n, nil
}

// Lookup returns the node called name without creating it.
func (g *Graph) Lookup(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all nodes sorted by name.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Root returns the external root context.
func (g *Graph) Root() scope.Loader { return g.root }

// SetRoot sets the external root context used by orphan nodes. A nil
// loader restores [scope.Empty].
func (g *Graph) SetRoot(root scope.Loader) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if root == nil {
		root = scope.Empty()
	}
	g.root = root
	return nil
}

// DefaultStrategy returns the strategy of nodes without an override.
func (g *Graph) DefaultStrategy() scope.Strategy { return g.defaultStrategy }

// SetDefaultStrategy sets the strategy of nodes without an override.
func (g *Graph) SetDefaultStrategy(s scope.Strategy) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if s == nil {
		return errors.New(errors.ErrCodeInvalidStrategy, "default strategy cannot be nil")
	}
	g.defaultStrategy = s
	return nil
}

// SetDefaultStrategyName sets the default strategy by registered name.
func (g *Graph) SetDefaultStrategyName(name string) error {
	s, err := g.strategies.Lookup(name)
	if err != nil {
		return err
	}
	return g.SetDefaultStrategy(s)
}

// Strategies returns the registry used to resolve strategy names.
func (g *Graph) Strategies() *scope.Registry { return g.strategies }

// Validate checks the parent relation for cycles.
func (g *Graph) Validate() ValidationResult { return Validate(g) }

// Freeze makes the definition read-only. Materialization freezes the
// definition it consumes.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether the definition is read-only.
func (g *Graph) Frozen() bool { return g.frozen }

func (g *Graph) checkMutable() error {
	if g.frozen {
		return errors.New(errors.ErrCodeGraphStructure, "definition is frozen")
	}
	return nil
}

// owns reports whether n belongs to g.
func (g *Graph) owns(n *Node) bool {
	return n != nil && g.nodes[n.name] == n
}

// Import is an import declaration: names matching Pattern are looked up in
// Target's own artifacts.
type Import struct {
	Target  *Node
	Pattern string
	Matcher importmatch.Matcher
}
