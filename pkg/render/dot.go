package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/scopegraph/pkg/definition"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the effective strategy and the sources to node labels.
	// When false, only the node name is shown.
	Detailed bool
}

const (
	unitImportColor     = "#1f77b4"
	resourceImportColor = "#2ca02c"
)

// ToDOT converts a definition to Graphviz DOT. Nodes and edges are emitted
// in name order, so equal definitions produce equal output.
func ToDOT(g *definition.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := g.Nodes()
	for _, n := range nodes {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if n.Parent() == nil {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		if p := n.Parent(); p != nil {
			fmt.Fprintf(&buf, "  %q -> %q;\n", p.Name(), n.Name())
		}
	}
	for _, n := range nodes {
		for _, imp := range n.UnitImports() {
			writeImport(&buf, imp, n, unitImportColor)
		}
		for _, imp := range n.ResourceImports() {
			writeImport(&buf, imp, n, resourceImportColor)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeImport(buf *bytes.Buffer, imp definition.Import, to *definition.Node, color string) {
	fmt.Fprintf(buf, "  %q -> %q [style=dashed, color=%q, fontcolor=%q, label=%q];\n",
		imp.Target.Name(), to.Name(), color, color, imp.Pattern)
}

func fmtLabel(n *definition.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}
	parts := []string{n.Name(), "strategy: " + n.EffectiveStrategy().Name()}
	parts = append(parts, n.Sources()...)
	return strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg element with one whose size
// matches its viewBox, which makes the output scale in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
