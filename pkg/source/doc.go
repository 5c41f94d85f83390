// Package source turns textual source specifications into artifact
// locations.
//
// # Resolvers
//
// A [Resolver] either resolves a specification to an [Artifacts] value or
// declines it (ok == false), letting the next resolver of a [Chain] try.
// Declining is not an error; returned errors abort materialization.
//
// The builtin [Default] resolver understands three forms, tried in order:
//
//  1. Filesystem paths: specifications starting with "/" or containing no
//     ':' at all. "~/" expands to the home directory. A trailing "/" names a
//     directory, a plain file name names one artifact, and a file name
//     containing '*' is matched against the base name of every regular file
//     below the directory ("/opt/app/lib/*.jar").
//  2. Direct URLs: "http:", "https:" and "file:" specifications.
//  3. Bundled directories: "classpath:dir/" specifications, looked up as a
//     resource directory in the fallback [Finder] (normally the graph's
//     root context).
//
// # Registry
//
// External resolvers are passed explicitly through a [Registry]. They are
// tried in registration order, before the builtin resolver:
//
//	reg := source.NewRegistry(catalogResolver)
//	chain := reg.Chain(logger) // catalogResolver, then Default
//
// Resolvers and Artifacts values that implement [io.Closer] own resources;
// the materializer registers them and closes them with the graph.
package source
