package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/definition"
)

// treeCommand creates the tree command, which prints the parent hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "tree <definition.toml>",
		Short: "Print the parent hierarchy of a graph definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, def, err := c.loadDefinition(args[0])
			if err != nil {
				return err
			}
			if res := def.Validate(); !res.OK {
				return res.Err()
			}
			fmt.Fprintln(c.Out, renderTree(def, showSources))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showSources, "sources", "s", false, "list each node's sources")

	return cmd
}

// renderTree draws every orphan node with its descendants. def must be
// acyclic.
func renderTree(def *definition.Graph, showSources bool) string {
	children := make(map[*definition.Node][]*definition.Node)
	var orphans []*definition.Node
	for _, n := range def.Nodes() {
		if p := n.Parent(); p != nil {
			children[p] = append(children[p], n)
		} else {
			orphans = append(orphans, n)
		}
	}

	var build func(n *definition.Node) *tree.Tree
	build = func(n *definition.Node) *tree.Tree {
		t := tree.Root(nodeLabel(n))
		if showSources {
			for _, src := range n.Sources() {
				t.Child(StyleLink.Render(src))
			}
		}
		for _, ch := range children[n] {
			t.Child(build(ch))
		}
		return t
	}

	root := tree.New().
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(colorDim))
	for _, n := range orphans {
		root.Child(build(n))
	}
	return root.String()
}

func nodeLabel(n *definition.Node) string {
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(n.Name()))
	b.WriteString(" " + StyleDim.Render("["+n.EffectiveStrategy().Name()+"]"))
	for _, imp := range n.UnitImports() {
		b.WriteString(StyleDim.Render(fmt.Sprintf(" units %s<%s>", imp.Target.Name(), imp.Pattern)))
	}
	for _, imp := range n.ResourceImports() {
		b.WriteString(StyleDim.Render(fmt.Sprintf(" resources %s<%s>", imp.Target.Name(), imp.Pattern)))
	}
	return b.String()
}
