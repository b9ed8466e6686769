package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/graph"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the row and timestamp to node labels.
	Detailed bool
	// Palette colors node outlines by lane. Empty leaves nodes black.
	Palette []string
	// Missing names the missing parent with the given ordinal. Stub nodes
	// carry it as a tooltip. FromVisible fills it in when nil.
	Missing func(target int) string
}

// Node describes one node of the diagram.
type Node struct {
	ID        string
	Subject   string
	Timestamp int64
	Lane      int
}

// ToDOT converts a linear graph to Graphviz DOT. describe returns the node
// shown at each row of g.
//
// Dotted edges of collapsed ranges are drawn dotted. Edges to parents that
// are not loaded end in a small grey point.
func ToDOT(g linear.Graph, describe func(row int) Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	n := g.NodesCount()
	for row := 0; row < n; row++ {
		node := describe(row)
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(node, row, opts.Detailed))}
		if len(opts.Palette) > 0 {
			attrs = append(attrs, fmt.Sprintf("color=%q", opts.Palette[node.Lane%len(opts.Palette)]), "penwidth=2")
		}
		fmt.Fprintf(&buf, "  r%d [%s];\n", row, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for row := 0; row < n; row++ {
		for _, e := range g.AdjacentEdges(row, linear.FilterDown) {
			switch e.Kind {
			case linear.EdgeNotLoad:
				stub := `label=""`
				if opts.Missing != nil {
					stub += fmt.Sprintf(", tooltip=%q", shortID(opts.Missing(e.Target)))
				}
				fmt.Fprintf(&buf, "  m%d_%d [shape=point, color=grey, %s];\n", row, e.Target, stub)
				fmt.Fprintf(&buf, "  r%d -> m%d_%d [style=dashed, color=grey];\n", row, row, e.Target)
			case linear.EdgeDotted:
				fmt.Fprintf(&buf, "  r%d -> r%d [style=dotted];\n", e.Up, e.Down)
			default:
				fmt.Fprintf(&buf, "  r%d -> r%d;\n", e.Up, e.Down)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// FromVisible converts the current view of g to DOT. subjects, if non-nil,
// supplies commit subjects.
func FromVisible(g *visible.Graph[string], subjects map[string]*graph.Commit, opts Options) string {
	p := g.Permanent()
	if opts.Missing == nil {
		opts.Missing = p.Commits.MissingParent
	}
	var dot string
	g.Inspect(func(compiled linear.Graph) {
		dot = ToDOT(compiled, func(row int) Node {
			id := compiled.NodeID(row)
			commit := p.Commits.CommitID(id)
			node := Node{
				ID:        commit,
				Timestamp: p.Commits.Timestamp(id),
				Lane:      p.Layout.LayoutIndex(id),
			}
			if c, ok := subjects[commit]; ok {
				node.Subject = c.Subject
			}
			return node
		}, opts)
	})
	return dot
}

func fmtLabel(n Node, row int, detailed bool) string {
	label := shortID(n.ID)
	if n.Subject != "" {
		label += " " + n.Subject
	}
	if detailed {
		label += fmt.Sprintf("\nrow: %d\ntimestamp: %d", row, n.Timestamp)
	}
	return label
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
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

// normalizeViewBox replaces Graphviz's point-based svg tag with one sized
// by its viewBox, so the image scales in browsers.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
