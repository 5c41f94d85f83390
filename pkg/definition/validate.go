package definition

import (
	"strings"

	"github.com/matzehuels/scopegraph/pkg/errors"
)

const validationName = "Cycles detection"

// ValidationResult is the outcome of [Validate].
type ValidationResult struct {
	OK    bool
	Cycle []string // Node names in parent-link order when OK is false
}

// Err returns a [errors.CycleError] for a failed result, or nil.
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	return &errors.CycleError{Cycle: r.Cycle}
}

// String describes the result for diagnostics, one cycle link per line.
func (r ValidationResult) String() string {
	var sb strings.Builder
	sb.WriteString(validationName)
	if r.OK {
		sb.WriteString(": validation passed")
		return sb.String()
	}
	sb.WriteString(": validation failed Detected cycle:")
	for i, name := range r.Cycle {
		parent := r.Cycle[(i+1)%len(r.Cycle)]
		sb.WriteString("\n ")
		sb.WriteString(name)
		sb.WriteString(" <- ")
		sb.WriteString(parent)
	}
	return sb.String()
}

type color uint8

const (
	white color = iota
	grey
	black
)

// Validate checks the parent relation of g for cycles. Nodes are walked in
// name order, so the reported cycle is deterministic. Each parent chain is
// walked until it ends, reaches a node already known to be acyclic, or
// revisits a node of the current walk.
func Validate(g *Graph) ValidationResult {
	colors := make(map[*Node]color, g.Len())
	for _, start := range g.Nodes() {
		if colors[start] != white {
			continue
		}
		var walk []*Node
		for n := start; n != nil && colors[n] != black; n = n.parent {
			if colors[n] == grey {
				return ValidationResult{Cycle: extractCycle(n)}
			}
			colors[n] = grey
			walk = append(walk, n)
		}
		for _, n := range walk {
			colors[n] = black
		}
	}
	return ValidationResult{OK: true}
}

// extractCycle lists the cycle through n, starting at n, in parent order.
func extractCycle(n *Node) []string {
	cycle := []string{n.name}
	for cur := n.parent; cur != n; cur = cur.parent {
		cycle = append(cycle, cur.name)
	}
	return cycle
}
