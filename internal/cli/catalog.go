package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/source/catalog"
)

// catalogCommand creates the catalog command for managing "catalog:" sources.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage named location sets for catalog: sources",
		Long: `Manage named location sets for catalog: sources.

A node source written as "catalog:<name>" resolves to the locations stored
under name. The catalog is a SQLite database at the catalog_path setting.`,
	}

	cmd.AddCommand(c.catalogAddCommand())
	cmd.AddCommand(c.catalogListCommand())

	return cmd
}

func (c *CLI) catalogAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "add <name> <location>...",
		Short:   "Store locations under a name, replacing any previous entry",
		Example: `  scopegraph catalog add plugins file:///opt/plugins/a.jar https://repo.example/b/`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.settings.CatalogPath
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create catalog directory: %w", err)
			}
			cat, err := catalog.Open(path)
			if err != nil {
				return err
			}
			defer cat.Close()

			if err := cat.Put(cmd.Context(), args[0], args[1:]...); err != nil {
				return err
			}
			printSuccess(c.Out, "Stored %s", StyleHighlight.Render(catalog.Prefix+args[0]))
			for _, loc := range args[1:] {
				printLocation(c.Out, loc)
			}
			return nil
		},
	}
}

func (c *CLI) catalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog entries with their locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := c.settings.CatalogPath
			if _, err := os.Stat(path); os.IsNotExist(err) {
				printInfo(c.Out, "Catalog is empty")
				return nil
			}
			cat, err := catalog.Open(path)
			if err != nil {
				return err
			}
			defer cat.Close()

			names, err := cat.List(ctx)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo(c.Out, "Catalog is empty")
				return nil
			}
			for _, name := range names {
				locs, _, err := cat.Get(ctx, name)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.Out, StyleHighlight.Render(catalog.Prefix+name))
				for _, loc := range locs {
					printLocation(c.Out, loc.String())
				}
			}
			return nil
		},
	}
}
