// Package nodelink exports visible commit graphs as node-link diagrams.
//
// # Usage
//
// Convert the current view of a visible graph to DOT, then render to SVG:
//
//	dot := nodelink.FromVisible(g, log.Index(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rows of the view become boxes labeled with the short commit id and
// subject. Collapsed ranges appear as dotted edges between their
// endpoints, so the diagram always matches what the row view shows.
//
// [ToDOT] works on any [linear.Graph], including the permanent graph.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
//
// [linear.Graph]: github.com/matzehuels/commitgraph/pkg/core/linear
package nodelink
