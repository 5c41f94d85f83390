// Package definition provides the mutable description of a scope graph.
//
// A [Graph] holds named [Node] definitions. Each node declares:
//
//   - Sources: ordered, de-duplicated source specifications turned into
//     artifact locations at materialization time
//   - Parent: an optional node of the same graph
//   - Strategy: an optional loading strategy override
//   - Imports: wildcard patterns granting access to another node's own
//     units ([Node.ImportUnits]) or resources ([Node.ImportResources])
//
// The graph also carries a default strategy and the external root context
// that orphan nodes delegate to.
//
// Errors are reported as early as possible: invalid node names, invalid
// import patterns, unknown strategy names and nodes of a foreign graph are
// rejected by the builder method that introduces them. Parent cycles can only
// be detected once the whole graph is known; [Validate] finds them.
//
// # Example
//
//	g := definition.New(nil)
//	core, _ := g.Node("core")
//	core.AddSource("/opt/app/core/")
//	app, _ := core.AddChild("app")
//	app.AddSource("/opt/app/lib/*.jar")
//	app.ImportUnitsFrom("plugins", "plugin.api.*")
//
// A Graph is not safe for concurrent mutation. It is frozen once
// materialization begins; later mutations fail.
package definition
