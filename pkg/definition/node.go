package definition

import (
	"slices"

	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/importmatch"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

// Node is the definition of one scope.
type Node struct {
	name     string
	graph    *Graph
	sources  []string
	seen     map[string]struct{}
	parent   *Node
	strategy scope.Strategy

	unitImports     []Import
	resourceImports []Import
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Graph returns the definition the node belongs to.
func (n *Node) Graph() *Graph { return n.graph }

// Sources returns the source specifications in declaration order.
func (n *Node) Sources() []string { return slices.Clone(n.sources) }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Strategy returns the strategy override, or nil when the graph default applies.
func (n *Node) Strategy() scope.Strategy { return n.strategy }

// EffectiveStrategy returns the override or the graph default.
func (n *Node) EffectiveStrategy() scope.Strategy {
	if n.strategy != nil {
		return n.strategy
	}
	return n.graph.defaultStrategy
}

// UnitImports returns the unit import declarations in order.
func (n *Node) UnitImports() []Import { return slices.Clone(n.unitImports) }

// ResourceImports returns the resource import declarations in order.
func (n *Node) ResourceImports() []Import { return slices.Clone(n.resourceImports) }

// AddSource appends source specifications. Specifications already present
// are ignored.
func (n *Node) AddSource(specs ...string) error {
	if err := n.graph.checkMutable(); err != nil {
		return err
	}
	for _, spec := range specs {
		if err := errors.ValidateSourceSpec(spec); err != nil {
			return err
		}
	}
	for _, spec := range specs {
		if _, ok := n.seen[spec]; ok {
			continue
		}
		n.seen[spec] = struct{}{}
		n.sources = append(n.sources, spec)
	}
	return nil
}

// SetParent sets the parent node. A nil parent makes the node an orphan.
// The parent must belong to the same graph.
func (n *Node) SetParent(parent *Node) error {
	if err := n.graph.checkMutable(); err != nil {
		return err
	}
	if parent != nil && !n.graph.owns(parent) {
		return errors.New(errors.ErrCodeGraphStructure, "node %q does not belong to this graph", parent.name)
	}
	n.parent = parent
	return nil
}

// AddChild makes the node called name (created if needed) a child of n and
// returns it.
func (n *Node) AddChild(name string) (*Node, error) {
	child, err := n.graph.Node(name)
	if err != nil {
		return nil, err
	}
	if err := child.SetParent(n); err != nil {
		return nil, err
	}
	return child, nil
}

// AddChildNode makes child a child of n.
func (n *Node) AddChildNode(child *Node) error {
	if !n.graph.owns(child) {
		name := "<nil>"
		if child != nil {
			name = child.name
		}
		return errors.New(errors.ErrCodeGraphStructure, "node %q does not belong to this graph", name)
	}
	return child.SetParent(n)
}

// SetStrategy overrides the loading strategy. Nil restores the graph default.
func (n *Node) SetStrategy(s scope.Strategy) error {
	if err := n.graph.checkMutable(); err != nil {
		return err
	}
	n.strategy = s
	return nil
}

// SetStrategyName overrides the loading strategy by registered name. An
// empty name restores the graph default.
func (n *Node) SetStrategyName(name string) error {
	if name == "" {
		return n.SetStrategy(nil)
	}
	s, err := n.graph.strategies.Lookup(name)
	if err != nil {
		return err
	}
	return n.SetStrategy(s)
}

// ImportUnits lets n resolve units matching pattern from the own
// artifacts of from. The pattern is compiled immediately.
func (n *Node) ImportUnits(from *Node, pattern string) error {
	imp, err := n.newImport(from, pattern, importmatch.UnitDelimiter)
	if err != nil {
		return err
	}
	n.unitImports = append(n.unitImports, imp)
	return nil
}

// ImportUnitsFrom is like ImportUnits but names the target, creating it if
// needed.
func (n *Node) ImportUnitsFrom(from, pattern string) error {
	target, err := n.graph.Node(from)
	if err != nil {
		return err
	}
	return n.ImportUnits(target, pattern)
}

// ImportResources lets n resolve resources matching pattern from the own
// artifacts of from.
func (n *Node) ImportResources(from *Node, pattern string) error {
	imp, err := n.newImport(from, pattern, importmatch.ResourceDelimiter)
	if err != nil {
		return err
	}
	n.resourceImports = append(n.resourceImports, imp)
	return nil
}

// ImportResourcesFrom is like ImportResources but names the target,
// creating it if needed.
func (n *Node) ImportResourcesFrom(from, pattern string) error {
	target, err := n.graph.Node(from)
	if err != nil {
		return err
	}
	return n.ImportResources(target, pattern)
}

func (n *Node) newImport(from *Node, pattern string, delim byte) (Import, error) {
	if err := n.graph.checkMutable(); err != nil {
		return Import{}, err
	}
	if !n.graph.owns(from) {
		name := "<nil>"
		if from != nil {
			name = from.name
		}
		return Import{}, errors.New(errors.ErrCodeGraphStructure, "node %q does not belong to this graph", name)
	}
	m, err := importmatch.Compile(pattern, delim)
	if err != nil {
		return Import{}, err
	}
	return Import{Target: from, Pattern: pattern, Matcher: m}, nil
}
