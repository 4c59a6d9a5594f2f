package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pydepgraph/pkg/dag"
)

// unparsedKey mirrors deps.MetaUnparsed without importing the assembler.
const unparsedKey = "unparsed"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed puts the version under the name in node labels.
	// When false, only the name is shown. Tooltips always carry everything.
	Detailed bool
}

// ToDOT converts a DAG to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Every node gets a tooltip holding its [Annotation], which SVG viewers show
// on hover. The root is drawn bold; placeholder nodes for unparseable
// declarations are dashed and grey.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(*n, fmtLabel(*n, opts.Detailed))
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %d -> %d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Annotation returns the hover text for a node, one "key : value" pair per
// line: the node ID first, then name and version, then any other metadata
// in key order.
func Annotation(n dag.Node) string {
	lines := []string{fmt.Sprintf("node : %d", n.ID)}
	for _, k := range []string{dag.MetaName, dag.MetaVersion} {
		if v, ok := n.Meta[k]; ok {
			lines = append(lines, fmt.Sprintf("%s : %v", k, v))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == dag.MetaName || k == dag.MetaVersion {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s : %v", k, n.Meta[k]))
	}
	return strings.Join(lines, "\n")
}

func fmtLabel(n dag.Node, detailed bool) string {
	name := n.Name()
	if name == "" {
		name = strconv.Itoa(n.ID)
	}
	if !detailed || n.Version() == "" {
		return name
	}
	return name + "\n" + n.Version()
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("tooltip=%q", Annotation(n)),
	}
	switch {
	case n.ID == dag.RootID:
		attrs = append(attrs, "penwidth=2", "fontname=\"bold\"")
	case n.Meta[unparsedKey] == true:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
