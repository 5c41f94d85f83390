package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// checkCommand creates the check command: validate, then materialize and
// release the graph as a dry run.
func (c *CLI) checkCommand() *cobra.Command {
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "check <definition.toml>",
		Short: "Validate a graph definition and materialize it as a dry run",
		Long: `Validate a graph definition and materialize it as a dry run.

Every source is resolved and every artifact location opened, so missing
files and unreachable URLs are reported here rather than at lookup time.
All scopes are released before the command returns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, def, err := c.loadDefinition(args[0])
			if err != nil {
				return err
			}

			res := def.Validate()
			if !res.OK {
				printError(c.Out, "%s", res)
				return res.Err()
			}
			printSuccess(c.Out, "%s", res)
			if validateOnly {
				return nil
			}

			l, err := c.materialize(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSuccess(c.Out, "Materialized %s", StyleHighlight.Render(args[0]))
			printKeyValue(c.Out, "Graph", l.graph.ID())
			printKeyValue(c.Out, "Scopes", fmt.Sprint(l.graph.Len()))
			printKeyValue(c.Out, "Orphans", fmt.Sprint(len(l.graph.Orphans())))
			printKeyValue(c.Out, "Handlers", fmt.Sprint(l.graph.Handlers()))
			if f.Launch.MainNode != "" {
				main := f.Launch.MainNode
				if f.Launch.MainUnit != "" {
					main += " " + iconArrow + " " + f.Launch.MainUnit
				}
				printKeyValue(c.Out, "Launch", main)
			}

			if err := l.Close(); err != nil {
				printWarning(c.Out, "release: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "only check for parent cycles")

	return cmd
}
