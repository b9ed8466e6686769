package print

import (
	"cmp"
	"slices"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

// AnchorInterval is the distance in rows between cached pass-through sets.
const AnchorInterval = 256

// Manager produces print elements for one compiled graph. It caches state
// derived from the graph; call Invalidate after the graph changes. A
// Manager is not safe for concurrent use.
type Manager struct {
	g      linear.Graph
	lanes  Lanes
	colors ColorPolicy

	colorCache map[int]int
	anchors    [][]linear.Edge

	selected    *linear.Element
	selectedIDs map[int]struct{}
}

// NewManager returns a manager for g. A nil colors policy colors every
// lane by its layout index.
func NewManager(g linear.Graph, lanes Lanes, colors ColorPolicy) *Manager {
	if colors == nil {
		colors = func(_, lane int) int { return lane }
	}
	return &Manager{
		g:          g,
		lanes:      lanes,
		colors:     colors,
		colorCache: make(map[int]int),
	}
}

// Invalidate drops the cached pass-through sets.
func (m *Manager) Invalidate() { m.anchors = nil }

// SetSelection sets the explicitly selected element (nil for none) and the
// selected nodes by permanent id.
func (m *Manager) SetSelection(el *linear.Element, ids []int) {
	m.selected = el
	m.selectedIDs = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		m.selectedIDs[id] = struct{}{}
	}
}

// IsSelected reports whether el is the selected element or all of its
// endpoints are selected nodes.
func (m *Manager) IsSelected(el linear.Element) bool {
	if m.selected != nil && *m.selected == el {
		return true
	}
	if len(m.selectedIDs) == 0 {
		return false
	}
	for _, idx := range el.Endpoints() {
		if _, ok := m.selectedIDs[m.g.NodeID(idx)]; !ok {
			return false
		}
	}
	return true
}

// LayoutIndex returns the lane of el: the lane of a node, or the larger
// lane of an edge's endpoints.
func (m *Manager) LayoutIndex(el linear.Element) int {
	lane := 0
	for _, idx := range el.Endpoints() {
		lane = max(lane, m.lanes.LayoutIndex(m.g.NodeID(idx)))
	}
	return lane
}

// ColorID returns the color of el's lane. Colors are computed once per lane.
func (m *Manager) ColorID(el linear.Element) int {
	lane := m.LayoutIndex(el)
	if c, ok := m.colorCache[lane]; ok {
		return c
	}
	c := m.colors(m.lanes.LaneHead(lane), lane)
	m.colorCache[lane] = c
	return c
}

// Compare orders elements within a row: by lane, then by node id (an
// edge's upper id, then its lower id), with a node before edges.
func (m *Manager) Compare(a, b linear.Element) int {
	if c := cmp.Compare(m.LayoutIndex(a), m.LayoutIndex(b)); c != 0 {
		return c
	}
	ka, kb := m.ids(a), m.ids(b)
	if c := cmp.Compare(ka[0], kb[0]); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(ka[1], kb[1]); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Edge.Kind, b.Edge.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Edge.Target, b.Edge.Target)
}

// ids returns the permanent id sort keys of el.
func (m *Manager) ids(el linear.Element) [2]int {
	if el.IsNode() {
		return [2]int{m.g.NodeID(el.Node), -1}
	}
	down := -1
	if el.Edge.IsLoaded() {
		down = m.g.NodeID(el.Edge.Down)
	}
	return [2]int{m.g.NodeID(el.Edge.Up), down}
}

// Row returns the print elements of row r.
func (m *Manager) Row(r int) ([]PrintElement, error) {
	rows, err := m.Rows(r, 1)
	if err != nil {
		return nil, err
	}
	return rows[0], nil
}

// Rows returns the print elements of rows [offset, offset+limit), clipped
// to the graph. offset itself must address a row.
func (m *Manager) Rows(offset, limit int) ([][]PrintElement, error) {
	n := m.g.NodesCount()
	if err := errors.ValidateRow(offset, n); err != nil {
		return nil, err
	}
	end := min(n, offset+max(limit, 0))

	var prev []linear.Element
	cur := m.cells(offset, m.passing(offset))
	if offset > 0 {
		prev = m.cells(offset-1, m.passing(offset-1))
	}
	active := m.passing(offset)

	out := make([][]PrintElement, 0, end-offset)
	for r := offset; r < end; r++ {
		var next []linear.Element
		var nextActive []linear.Edge
		if r+1 < n {
			nextActive = m.step(active, r)
			next = m.cells(r+1, nextActive)
		}
		out = append(out, m.row(r, prev, cur, next))
		prev, cur, active = cur, next, nextActive
	}
	return out, nil
}

// row builds the elements of row r from the ordered cells of rows r-1, r
// and r+1.
func (m *Manager) row(r int, prev, cur, next []linear.Element) []PrintElement {
	var out []PrintElement
	add := func(el linear.Element, kind Kind, pos, other int) {
		pe := PrintElement{
			Row:           r,
			Position:      pos,
			OtherPosition: other,
			Kind:          kind,
			Color:         m.ColorID(el),
			Selected:      m.IsSelected(el),
			Element:       el,
		}
		if !el.IsNode() {
			pe.EdgeKind = el.Edge.Kind
		}
		out = append(out, pe)
	}

	for col, cell := range cur {
		if cell.IsNode() {
			add(cell, KindNode, col, col)
			for _, e := range m.g.AdjacentEdges(r, linear.FilterUp) {
				add(linear.EdgeElement(e), KindEdgeUp, col, edgeColumn(prev, r-1, e))
			}
			for _, e := range m.g.AdjacentEdges(r, linear.FilterDown) {
				other := col
				if e.IsLoaded() {
					other = edgeColumn(next, r+1, e)
				}
				add(linear.EdgeElement(e), KindEdgeDown, col, other)
			}
			continue
		}
		e := cell.Edge
		add(cell, KindEdgeUp, col, edgeColumn(prev, r-1, e))
		add(cell, KindEdgeDown, col, edgeColumn(next, r+1, e))
	}
	return out
}

// edgeColumn returns the column of e in the neighbouring row with the given
// cells: the column of its endpoint if the edge ends there, or its own
// pass-through column otherwise.
func edgeColumn(cells []linear.Element, row int, e linear.Edge) int {
	if e.Up == row || e.Down == row {
		return column(cells, linear.NodeElement(row))
	}
	return column(cells, linear.EdgeElement(e))
}

func column(cells []linear.Element, el linear.Element) int {
	return slices.Index(cells, el)
}

// cells returns the ordered cells of row r: its node and the edges in active.
func (m *Manager) cells(r int, active []linear.Edge) []linear.Element {
	cells := make([]linear.Element, 0, len(active)+1)
	cells = append(cells, linear.NodeElement(r))
	for _, e := range active {
		cells = append(cells, linear.EdgeElement(e))
	}
	slices.SortFunc(cells, m.Compare)
	return cells
}

// passing returns the loaded edges with Up < r < Down.
func (m *Manager) passing(r int) []linear.Edge {
	k := r / AnchorInterval
	for len(m.anchors) <= k {
		i := len(m.anchors)
		if i == 0 {
			m.anchors = append(m.anchors, nil)
			continue
		}
		active := m.anchors[i-1]
		for row := (i - 1) * AnchorInterval; row < i*AnchorInterval; row++ {
			active = m.step(active, row)
		}
		m.anchors = append(m.anchors, active)
	}
	active := m.anchors[k]
	for row := k * AnchorInterval; row < r; row++ {
		active = m.step(active, row)
	}
	return active
}

// step turns the edges passing through row r into those passing through
// row r+1. It never modifies active.
func (m *Manager) step(active []linear.Edge, r int) []linear.Edge {
	next := make([]linear.Edge, 0, len(active)+2)
	for _, e := range active {
		if e.Down > r+1 {
			next = append(next, e)
		}
	}
	for _, e := range m.g.AdjacentEdges(r, linear.FilterDown) {
		if e.IsLoaded() && e.Down > r+1 {
			next = append(next, e)
		}
	}
	return next
}
