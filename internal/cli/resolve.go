package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

// resolveCommand creates the resolve command, which looks up units.
func (c *CLI) resolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <definition.toml> <scope> <unit>...",
		Short: "Resolve units in a scope",
		Long: `Resolve units in a scope.

Each unit is looked up through the scope's strategy and reported with the
scope that defined it and the location its bytes came from.`,
		Example: `  scopegraph resolve app.toml b com.example.Service`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, sc, err := c.openScope(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer l.Close()

			missing := 0
			for _, name := range args[2:] {
				u, ok, err := sc.ResolveUnit(ctx, name)
				if err != nil {
					return err
				}
				if !ok {
					printWarning(c.Out, "%s not found", name)
					missing++
					continue
				}
				printSuccess(c.Out, "%s %s %s", StyleHighlight.Render(name), StyleDim.Render("defined by"), u.Scope)
				printLocation(c.Out, u.Location.String())
			}
			if missing > 0 {
				return errors.New(errors.ErrCodeNotFound, "%d of %d units not found in scope %q", missing, len(args)-2, sc.Name())
			}
			return nil
		},
	}
}

// resourcesCommand creates the resources command.
func (c *CLI) resourcesCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "resources <definition.toml> <scope> <name>",
		Short: "Resolve a resource in a scope",
		Long: `Resolve a resource in a scope.

By default the first match in strategy order is printed. With --all every
match is listed in strategy order.`,
		Example: `  scopegraph resources app.toml b conf/app.properties --all`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, sc, err := c.openScope(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			defer l.Close()

			name := args[2]
			if !all {
				loc, ok, err := sc.ResolveResource(ctx, name)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New(errors.ErrCodeNotFound, "resource %q not found in scope %q", name, sc.Name())
				}
				fmt.Fprintln(c.Out, loc)
				return nil
			}

			n := 0
			for loc, err := range sc.ResolveResources(ctx, name) {
				if err != nil {
					return err
				}
				fmt.Fprintln(c.Out, loc)
				n++
			}
			loggerFromContext(ctx).Debug("resources listed", "scope", sc.Name(), "name", name, "count", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every match")

	return cmd
}

// openScope materializes path and returns the named scope. The caller
// closes the returned graph.
func (c *CLI) openScope(ctx context.Context, path, name string) (*loaded, *scope.Scope, error) {
	l, err := c.materialize(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	sc, ok := l.graph.Scope(name)
	if !ok {
		l.Close()
		return nil, nil, errors.New(errors.ErrCodeNotFound, "no scope named %q in %s", name, path)
	}
	return l, sc, nil
}
