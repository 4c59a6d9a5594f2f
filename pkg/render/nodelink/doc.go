// Package nodelink renders dependency graphs as traditional node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// nodes appear as boxes connected by arrows. A dependency star renders as the
// root package on top with one arrow to each declared dependency below it.
//
// # Usage
//
// Convert a DAG to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Annotations
//
// Each node carries a tooltip built by [Annotation]: its node ID, name and
// version as "key : value" lines. Browsers display it when the pointer
// hovers a node in the SVG, and the terminal viewer shows the same text for
// the selected node.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package nodelink
