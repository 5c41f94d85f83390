package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/artifact"
	"github.com/matzehuels/scopegraph/pkg/buildinfo"
	"github.com/matzehuels/scopegraph/pkg/cache"
	"github.com/matzehuels/scopegraph/pkg/config"
	"github.com/matzehuels/scopegraph/pkg/definition"
	"github.com/matzehuels/scopegraph/pkg/httputil"
	"github.com/matzehuels/scopegraph/pkg/materialize"
	"github.com/matzehuels/scopegraph/pkg/source"
	"github.com/matzehuels/scopegraph/pkg/source/catalog"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories, env and display.
	appName = "scopegraph"

	// remoteCachePrefix namespaces remote artifact entries in the cache.
	remoteCachePrefix = "artifacts:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer

	settingsFile string
	settings     *Settings
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "scopegraph builds and queries graphs of isolated loading scopes",
		Long: `scopegraph reads a graph definition, resolves every node's sources into
artifact locations and builds one loading scope per node. Scopes resolve
units and resources through their parent, their own artifacts and their
imports, in the order chosen by each node's strategy.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(c.settingsFile)
			if err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			c.settings = s
			if level, err := log.ParseLevel(s.LogLevel); err == nil {
				c.SetLogLevel(level)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.PersistentFlags().StringVar(&c.settingsFile, "settings", "", "settings file (default $XDG_CONFIG_HOME/scopegraph/settings.toml)")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.resourcesCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Graph Loading
// =============================================================================

// loadDefinition reads a definition file.
func (c *CLI) loadDefinition(path string) (*config.File, *definition.Graph, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	def, err := f.Definition(nil)
	if err != nil {
		return nil, nil, err
	}
	return f, def, nil
}

// loaded is a materialized definition together with what it holds open.
type loaded struct {
	file  *config.File
	def   *definition.Graph
	graph *materialize.Graph
	cache cache.Cache
}

// Close releases the graph and the artifact cache.
func (l *loaded) Close() error {
	err := l.graph.Close()
	if cerr := l.cache.Close(); err == nil {
		err = cerr
	}
	return err
}

// materialize loads and materializes the definition file at path.
func (c *CLI) materialize(ctx context.Context, path string) (*loaded, error) {
	f, def, err := c.loadDefinition(path)
	if err != nil {
		return nil, err
	}

	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	resolvers, err := c.resolvers()
	if err != nil {
		ch.Close()
		return nil, err
	}

	prog := newProgress(c.Logger)
	g, err := materialize.Build(ctx, def, materialize.Options{
		Resolvers: resolvers,
		Opener:    &artifact.Opener{Client: httputil.NewClient(ch, remoteCachePrefix, c.settings.CacheTTL, nil)},
		Logger:    c.Logger,
	})
	if err != nil {
		ch.Close()
		return nil, err
	}
	prog.done(fmt.Sprintf("Materialized %d scopes", g.Len()))
	return &loaded{file: f, def: def, graph: g, cache: ch}, nil
}

// resolvers returns the external resolvers: the catalog when its database
// exists.
func (c *CLI) resolvers() (*source.Registry, error) {
	reg := source.NewRegistry()
	if _, err := os.Stat(c.settings.CatalogPath); err != nil {
		return reg, nil
	}
	cat, err := catalog.Open(c.settings.CatalogPath)
	if err != nil {
		return nil, err
	}
	reg.Register(cat)
	return reg, nil
}
