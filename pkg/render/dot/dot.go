// Package dot renders trees as Graphviz node-link diagrams.
//
// Convert a tree to DOT source, then render it to SVG in-process:
//
//	src := dot.ToDOT(root, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, src)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Layout is top-to-bottom with rounded box nodes; children appear
// left to right in tree order.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pairtree/pkg/tree"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds depth and child count to node labels.
	// When false, only the value is shown.
	Detailed bool
}

// ToDOT converts the tree rooted at root to Graphviz DOT source.
//
// Nodes are identified by their pre-order position, so values do not need
// to be valid DOT identifiers. Leaves are drawn with a light fill.
func ToDOT[T comparable](root *tree.Node[T], opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := root.AllNodes()
	ids := make(map[*tree.Node[T]]string, len(nodes))
	for i, n := range nodes {
		ids[n] = "n" + strconv.Itoa(i)
	}

	for _, n := range nodes {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(root, n, opts.Detailed))}
		if n.IsLeaf() && n != root {
			attrs = append(attrs, "fillcolor=\"#eef6ee\"")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", ids[n], strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Children() {
			fmt.Fprintf(&buf, "  %s -> %s;\n", ids[n], ids[c])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel[T comparable](root, n *tree.Node[T], detailed bool) string {
	label := fmt.Sprint(n.Value())
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\ndepth: %d\nchildren: %d", label, n.Depth()-root.Depth(), len(n.Children()))
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

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox, so the image scales in browsers.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
