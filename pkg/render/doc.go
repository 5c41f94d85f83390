// Package render draws scope graph definitions as node-link diagrams.
//
// # Overview
//
// Every node becomes a rounded box. Parent links are solid arrows from the
// parent to its child, so the graph reads top-down like an inheritance
// tree. Import declarations are dashed arrows from the exporting node to
// the importing node, labeled with the import pattern; resource imports are
// drawn in a second color.
//
// # Usage
//
//	dot := render.ToDOT(def, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the effective strategy and sources
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. The DOT source from [ToDOT] can also be fed to external
// Graphviz tools.
package render
