// Package materialize turns a graph definition into live loading scopes.
//
// A [Materializer] consumes a [definition.Graph] exactly once:
//
//  1. The parent relation is validated; a cycle aborts before any scope
//     exists.
//  2. The resolver chain is built from the registered external resolvers
//     followed by [source.Default]. Resolvers that implement io.Closer are
//     registered for cleanup immediately.
//  3. Scopes are built parent first. Shared ancestors are built once.
//  4. Every source specification of a node is resolved through the chain
//     and the resulting locations are opened in declaration order.
//  5. Import links are created unbound while scopes are built and bound to
//     their targets once every scope exists, so a node may import from a
//     node declared after it.
//
// Any failure releases everything acquired so far. Cleanup failures are
// attached to the returned error as suppressed errors; the primary cause is
// never masked.
//
// # Example
//
//	g := definition.New(nil)
//	api, _ := g.Node("api")
//	api.AddSource("/opt/app/api/")
//	app, _ := api.AddChild("app")
//	app.AddSource("/opt/app/lib/*.jar")
//
//	graph, err := materialize.Build(ctx, g, materialize.Options{})
//	if err != nil {
//	    return err
//	}
//	defer graph.Close()
//
//	s, _ := graph.Scope("app")
//	unit, ok, err := s.ResolveUnit(ctx, "com.example.Main")
//
// The returned [Graph] owns every scope and every registered handler and
// releases them once on [Graph.Close].
package materialize
