package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/render"
)

// dotCommand creates the dot command, which exports a definition as
// Graphviz DOT or SVG.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output   string
		svg      bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot <definition.toml>",
		Short: "Export a graph definition as Graphviz DOT or SVG",
		Long: `Export a graph definition as Graphviz DOT or SVG.

Parent links are drawn as solid edges, unit imports as blue dashed edges and
resource imports as green dashed edges labelled with their pattern. Nodes
without a parent are drawn with a heavier border.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, def, err := c.loadDefinition(args[0])
			if err != nil {
				return err
			}

			out := []byte(render.ToDOT(def, render.Options{Detailed: detailed}))
			if svg {
				prog := newProgress(c.Logger)
				if out, err = render.RenderSVG(cmd.Context(), string(out)); err != nil {
					return err
				}
				prog.done("Rendered SVG")
			}

			if output == "" || output == "-" {
				_, err := c.Out.Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess(c.Out, "Wrote %s", StyleLink.Render(output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include strategy and sources in node labels")

	return cmd
}
