// Package config reads scope graph definitions from TOML files.
//
// A definition file names every node in a [nodes] table:
//
//	default_strategy = "SPI"
//
//	[launch]
//	main_node = "app"
//	main_unit = "com.example.Main"
//
//	[nodes.core]
//	sources = ["/opt/app/core/"]
//
//	[nodes.app]
//	parent = "core"
//	strategy = "PSI"
//	sources = ["lib/*.jar", "classpath:plugins/app/"]
//
//	[[nodes.app.import_units]]
//	from = "plugins"
//	pattern = "plugin.api.*"
//
//	[[nodes.app.import_resources]]
//	from = "plugins"
//	pattern = "conf/**"
//
// Decoding is strict: a key that does not belong to the format is an
// error, as is a reference to a node that is not declared. Relative
// filesystem sources are resolved against the directory of the file.
//
// The launch table is carried as metadata for callers; this package never
// invokes an entry point.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scopegraph/pkg/definition"
	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

// File is a decoded definition file.
type File struct {
	DefaultStrategy string          `toml:"default_strategy"`
	Launch          Launch          `toml:"launch"`
	Nodes           map[string]Node `toml:"nodes"`

	// Dir is the directory relative sources are resolved against. Load sets
	// it to the directory of the file; Parse leaves it empty, which keeps
	// relative sources relative to the working directory.
	Dir string `toml:"-"`
}

// Launch names the entry point of a graph.
type Launch struct {
	MainNode string `toml:"main_node"`
	MainUnit string `toml:"main_unit"`
}

// Node is the declaration of one node.
type Node struct {
	Parent          string   `toml:"parent"`
	Strategy        string   `toml:"strategy"`
	Sources         []string `toml:"sources"`
	ImportUnits     []Import `toml:"import_units"`
	ImportResources []Import `toml:"import_resources"`
}

// Import is one import declaration.
type Import struct {
	From    string `toml:"from"`
	Pattern string `toml:"pattern"`
}

// Load reads and parses the definition file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read definition file")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "%s", path)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve directory of %s", path)
	}
	f.Dir = abs
	return f, nil
}

// Parse decodes and checks a definition file.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDefinition, err, "decode definition")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidDefinition, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// check verifies cross references between nodes.
func (f *File) check() error {
	if len(f.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidDefinition, "no nodes declared")
	}
	for _, name := range f.NodeNames() {
		n := f.Nodes[name]
		if n.Parent != "" {
			if _, ok := f.Nodes[n.Parent]; !ok {
				return errors.New(errors.ErrCodeInvalidDefinition, "node %q: parent %q is not declared", name, n.Parent)
			}
		}
		for _, imp := range slices.Concat(n.ImportUnits, n.ImportResources) {
			if imp.From == "" || imp.Pattern == "" {
				return errors.New(errors.ErrCodeInvalidDefinition, "node %q: imports need both from and pattern", name)
			}
			if _, ok := f.Nodes[imp.From]; !ok {
				return errors.New(errors.ErrCodeInvalidDefinition, "node %q: import source %q is not declared", name, imp.From)
			}
		}
	}
	if m := f.Launch.MainNode; m != "" {
		if _, ok := f.Nodes[m]; !ok {
			return errors.New(errors.ErrCodeInvalidDefinition, "launch.main_node %q is not declared", m)
		}
	}
	if f.Launch.MainUnit != "" && f.Launch.MainNode == "" {
		return errors.New(errors.ErrCodeInvalidDefinition, "launch.main_unit requires launch.main_node")
	}
	return nil
}

// NodeNames returns the declared node names, sorted.
func (f *File) NodeNames() []string {
	names := make([]string, 0, len(f.Nodes))
	for name := range f.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply adds the declarations of f to g. Nodes are applied in name order;
// every node is created before any reference to it is made.
func (f *File) Apply(g *definition.Graph) error {
	if f.DefaultStrategy != "" {
		if err := g.SetDefaultStrategyName(f.DefaultStrategy); err != nil {
			return err
		}
	}

	names := f.NodeNames()
	nodes := make(map[string]*definition.Node, len(names))
	for _, name := range names {
		n, err := g.Node(name)
		if err != nil {
			return err
		}
		nodes[name] = n
	}

	for _, name := range names {
		decl, n := f.Nodes[name], nodes[name]
		if decl.Parent != "" {
			if err := n.SetParent(nodes[decl.Parent]); err != nil {
				return err
			}
		}
		if err := n.SetStrategyName(decl.Strategy); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "node %q", name)
		}
		for _, spec := range decl.Sources {
			if err := n.AddSource(f.absSource(spec)); err != nil {
				return errors.Wrap(errors.GetCode(err), err, "node %q", name)
			}
		}
		for _, imp := range decl.ImportUnits {
			if err := n.ImportUnits(nodes[imp.From], imp.Pattern); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPattern, err, "node %q", name)
			}
		}
		for _, imp := range decl.ImportResources {
			if err := n.ImportResources(nodes[imp.From], imp.Pattern); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPattern, err, "node %q", name)
			}
		}
	}
	return nil
}

// Definition builds a new definition from f. Strategy names are looked up
// in strategies; nil means the builtin ones.
func (f *File) Definition(strategies *scope.Registry) (*definition.Graph, error) {
	g := definition.New(strategies)
	if err := f.Apply(g); err != nil {
		return nil, err
	}
	return g, nil
}

// absSource resolves a relative filesystem source against f.Dir.
func (f *File) absSource(spec string) string {
	if f.Dir == "" || spec == "" || spec[0] == '/' || strings.HasPrefix(spec, "~/") || strings.Contains(spec, ":") {
		return spec
	}
	abs := filepath.ToSlash(filepath.Join(f.Dir, filepath.FromSlash(spec)))
	if strings.HasSuffix(spec, "/") {
		abs += "/"
	}
	return abs
}
