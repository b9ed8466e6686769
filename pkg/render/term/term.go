// Package term renders visible graph rows as colored text lanes.
//
// Each row becomes a node line, with a commit marker in its lane and the
// commit label after the lanes. A connector line follows when edges leave
// the row downwards:
//
//	| * 5d4c3b2 topic work
//	* | a1b2c3d fix parser
//	|/
//	* 0a1b2c3 initial
//
// Dotted edges of collapsed ranges are drawn with ':' and stubs towards
// parents that are not loaded with '~'.
package term

import (
	"bufio"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/commitgraph/pkg/graph"
)

// Element kinds and edge kinds as serialized in [graph.Element].
const (
	kindNode     = "node"
	kindEdgeDown = "edge-down"
	edgeDotted   = "dotted"
	edgeNotLoad  = "not-load"
)

// Options configures rendering.
type Options struct {
	// Palette holds lane colors; Element.Color indexes it modulo its length.
	Palette []string
	// SelectedMarker replaces the node marker of selected commits.
	SelectedMarker string
	// Plain disables styling.
	Plain bool
	// HideLabels drops the commit id and subject after the lanes.
	HideLabels bool
}

// Renderer draws rows.
type Renderer struct {
	opts   Options
	lanes  []lipgloss.Style
	bold   lipgloss.Style
	dim    lipgloss.Style
	marker string
}

// New returns a renderer for opts.
func New(opts Options) *Renderer {
	r := &Renderer{
		opts:   opts,
		bold:   lipgloss.NewStyle().Bold(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		marker: opts.SelectedMarker,
	}
	if r.marker == "" {
		r.marker = "@"
	}
	for _, c := range opts.Palette {
		r.lanes = append(r.lanes, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}
	return r
}

// Render writes the lines of rows to w.
func (r *Renderer) Render(w io.Writer, rows []graph.Row) error {
	bw := bufio.NewWriter(w)
	for _, line := range r.Lines(rows) {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Lines returns the text lines of rows.
func (r *Renderer) Lines(rows []graph.Row) []string {
	var lines []string
	for _, b := range r.Blocks(rows) {
		lines = append(lines, b...)
	}
	return lines
}

// Blocks returns the lines of each row: its node line, then its connector
// line if it has one. All rows share one lane width.
func (r *Renderer) Blocks(rows []graph.Row) [][]string {
	width := 0
	for _, row := range rows {
		for _, el := range row.Elements {
			width = max(width, el.Position+1, el.OtherPosition+1)
		}
	}

	blocks := make([][]string, len(rows))
	for i, row := range rows {
		blocks[i] = []string{r.nodeLine(row, width)}
		if conn := r.connectorLine(row, width); conn != "" {
			blocks[i] = append(blocks[i], conn)
		}
	}
	return blocks
}

type cell struct {
	ch    rune
	color int
	bold  bool
}

type canvas []cell

func newCanvas(width int) canvas {
	c := make(canvas, 2*width)
	for i := range c {
		c[i].ch = ' '
	}
	return c
}

func (c canvas) set(i int, ch rune, color int) {
	if i >= 0 && i < len(c) {
		c[i] = cell{ch: ch, color: color}
	}
}

func (r *Renderer) nodeLine(row graph.Row, width int) string {
	c := newCanvas(width)
	for _, el := range row.Elements {
		if el.Kind != kindNode {
			c.set(2*el.Position, vertical(el.EdgeKind), el.Color)
		}
	}
	for _, el := range row.Elements {
		if el.Kind != kindNode {
			continue
		}
		ch := '*'
		if el.Selected {
			ch = []rune(r.marker)[0]
		}
		c.set(2*el.Position, ch, el.Color)
		c[2*el.Position].bold = el.Selected
	}

	line := r.paint(c)
	if r.opts.HideLabels {
		return strings.TrimRight(line, " ")
	}
	return line + r.label(row)
}

func (r *Renderer) connectorLine(row graph.Row, width int) string {
	c := newCanvas(width)
	drawn := false
	for _, el := range row.Elements {
		if el.Kind != kindEdgeDown {
			continue
		}
		drawn = true
		p, q := el.Position, el.OtherPosition
		switch {
		case el.EdgeKind == edgeNotLoad:
			c.set(2*p, '~', el.Color)
		case q == p:
			c.set(2*p, vertical(el.EdgeKind), el.Color)
		case q < p:
			c.set(2*p-1, '/', el.Color)
			for i := 2*q + 1; i < 2*p-1; i++ {
				c.set(i, '_', el.Color)
			}
		default:
			c.set(2*p+1, '\\', el.Color)
			for i := 2*p + 2; i < 2*q; i++ {
				c.set(i, '_', el.Color)
			}
		}
	}
	if !drawn {
		return ""
	}
	return strings.TrimRight(r.paint(c), " ")
}

func (r *Renderer) paint(c canvas) string {
	var b strings.Builder
	for _, x := range c {
		s := string(x.ch)
		if r.opts.Plain || x.ch == ' ' {
			b.WriteString(s)
			continue
		}
		st := r.laneStyle(x.color)
		if x.bold {
			st = st.Inherit(r.bold)
		}
		b.WriteString(st.Render(s))
	}
	return b.String()
}

func (r *Renderer) laneStyle(color int) lipgloss.Style {
	if len(r.lanes) == 0 {
		return lipgloss.NewStyle()
	}
	if color < 0 {
		color = -color
	}
	return r.lanes[color%len(r.lanes)]
}

func (r *Renderer) label(row graph.Row) string {
	id := shortID(row.Commit)
	if !r.opts.Plain {
		id = r.dim.Render(id)
	}
	if row.Subject == "" {
		return id
	}
	return id + " " + row.Subject
}

func vertical(edgeKind string) rune {
	if edgeKind == edgeDotted {
		return ':'
	}
	return '|'
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
