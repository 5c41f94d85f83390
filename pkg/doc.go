// Package pkg provides the core libraries for scopegraph.
//
// # Overview
//
// scopegraph builds graphs of isolated loading scopes. Each scope owns a set
// of artifact locations, may have a parent and may import units or resources
// from other scopes through wildcard patterns. A per-scope strategy decides
// the order in which parent, self and imports are consulted.
//
// The pkg directory is organized by stage:
//
//  1. [definition] - Declarative graph: nodes, parents, sources, imports
//  2. [config] - TOML definition files applied to a definition
//  3. [source] - Resolver chain turning source specs into locations
//  4. [artifact] - Opened locations: directories, archives, remote bases, bundles
//  5. [scope] - Loading scopes and strategies
//  6. [materialize] - Definition to scopes, with deferred import binding
//  7. [server], [render] - HTTP query API and Graphviz output
//
// Supporting packages: [importmatch] (wildcard patterns), [cache] and
// [httputil] (remote artifact fetching), [observability] (hooks and the
// Prometheus adapter), [errors], [buildinfo].
//
// # Architecture
//
// The typical data flow:
//
//	definition.toml
//	      ↓
//	 [config] package (strict decode, apply)
//	      ↓
//	 [definition] package (validate parent cycles)
//	      ↓
//	 [materialize] package (resolve sources, open artifacts, build, bind)
//	      ↓
//	 [scope] lookups: ResolveUnit, ResolveResource, ResolveResources
//
// # Quick Start
//
//	f, _ := config.Load("definition.toml")
//	def, _ := f.Definition(nil)
//	g, err := materialize.Build(ctx, def, materialize.Options{})
//	if err != nil {
//	    return err
//	}
//	defer g.Close()
//
//	app, _ := g.Scope("app")
//	u, ok, err := app.ResolveUnit(ctx, "com.example.Main")
package pkg
