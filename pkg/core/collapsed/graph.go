package collapsed

import (
	"context"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

const cancelCheckInterval = 1 << 10

// Graph is a delegate graph with a visibility bitset and dotted edges.
// Its linear.Graph methods describe the compiled view.
type Graph struct {
	delegate linear.Graph
	visible  *bitset.BitSet
	counts   *fenwick

	// Dotted edges in delegate indexes, both lists kept sorted.
	dottedDown map[int][]int
	dottedUp   map[int][]int
}

var _ linear.Graph = (*Graph)(nil)

// New returns a graph over delegate with every node visible.
func New(delegate linear.Graph) *Graph {
	n := delegate.NodesCount()
	visible := bitset.New(uint(n))
	visible.FlipRange(0, uint(n))
	return newGraph(delegate, visible)
}

// NewFiltered returns a graph over delegate where exactly the indexes in
// shown are visible, with all dotted edges generated.
func NewFiltered(ctx context.Context, delegate linear.Graph, shown []int) (*Graph, error) {
	n := delegate.NodesCount()
	visible := bitset.New(uint(n))
	for _, i := range shown {
		if err := errors.ValidateRow(i, n); err != nil {
			return nil, err
		}
		visible.Set(uint(i))
	}
	g := newGraph(delegate, visible)
	if err := g.Regenerate(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

func newGraph(delegate linear.Graph, visible *bitset.BitSet) *Graph {
	return &Graph{
		delegate:   delegate,
		visible:    visible,
		counts:     newFenwick(delegate.NodesCount(), func(i int) bool { return visible.Test(uint(i)) }),
		dottedDown: make(map[int][]int),
		dottedUp:   make(map[int][]int),
	}
}

// Delegate returns the graph being collapsed.
func (g *Graph) Delegate() linear.Graph { return g.delegate }

// IsVisible reports whether delegate index d is visible.
func (g *Graph) IsVisible(d int) bool { return g.visible.Test(uint(d)) }

// VisibleIndex returns the compiled index of delegate index d, or NoNode
// if d is hidden or out of range.
func (g *Graph) VisibleIndex(d int) int {
	if !linear.InRange(g.delegate, d) || !g.IsVisible(d) {
		return linear.NoNode
	}
	return g.counts.rank(d)
}

// DelegateIndex returns the delegate index of compiled index v.
func (g *Graph) DelegateIndex(v int) int { return g.counts.find(v) }

// HiddenCount returns the number of hidden delegate nodes.
func (g *Graph) HiddenCount() int { return g.delegate.NodesCount() - g.counts.total() }

// NodesCount returns the number of visible nodes.
func (g *Graph) NodesCount() int { return g.counts.total() }

// NodeID returns the permanent id of compiled index v.
func (g *Graph) NodeID(v int) int { return g.delegate.NodeID(g.DelegateIndex(v)) }

// NodeIndex returns the compiled index of permanent id, or NoNode if the
// node is hidden or unknown.
func (g *Graph) NodeIndex(id int) int {
	d := g.delegate.NodeIndex(id)
	if d == linear.NoNode {
		return linear.NoNode
	}
	return g.VisibleIndex(d)
}

// AdjacentEdges returns the compiled edges at v: delegate edges between
// visible nodes, not-load edges and dotted edges. Up edges are sorted by
// child; real down edges keep parent order and precede dotted ones.
func (g *Graph) AdjacentEdges(v int, filter linear.EdgeFilter) []linear.Edge {
	d := g.DelegateIndex(v)
	var edges []linear.Edge

	if filter&linear.FilterUp != 0 {
		for _, e := range g.delegate.AdjacentEdges(d, linear.FilterUp) {
			if g.IsVisible(e.Up) {
				edges = append(edges, linear.Edge{Up: g.counts.rank(e.Up), Down: v, Kind: e.Kind})
			}
		}
		for _, u := range g.dottedUp[d] {
			edges = append(edges, linear.Edge{Up: g.counts.rank(u), Down: v, Kind: linear.EdgeDotted})
		}
		slices.SortStableFunc(edges, func(a, b linear.Edge) int { return a.Up - b.Up })
	}

	if filter&linear.FilterDown != 0 {
		for _, e := range g.delegate.AdjacentEdges(d, linear.FilterDown) {
			switch {
			case !e.IsLoaded():
				e.Up = v
				edges = append(edges, e)
			case g.IsVisible(e.Down):
				edges = append(edges, linear.Edge{Up: v, Down: g.counts.rank(e.Down), Kind: e.Kind})
			}
		}
		for _, l := range g.dottedDown[d] {
			edges = append(edges, linear.Edge{Up: v, Down: g.counts.rank(l), Kind: linear.EdgeDotted})
		}
	}
	return edges
}

// DottedEdges returns all dotted edges in delegate indexes, sorted.
func (g *Graph) DottedEdges() []linear.Edge {
	var edges []linear.Edge
	for u, downs := range g.dottedDown {
		for _, l := range downs {
			edges = append(edges, linear.NewEdge(u, l, linear.EdgeDotted))
		}
	}
	slices.SortFunc(edges, func(a, b linear.Edge) int {
		if a.Up != b.Up {
			return a.Up - b.Up
		}
		return a.Down - b.Down
	})
	return edges
}

// HasDottedEdge reports whether the dotted edge up->down exists, in
// delegate indexes.
func (g *Graph) HasDottedEdge(up, down int) bool {
	_, found := slices.BinarySearch(g.dottedDown[up], down)
	return found
}

// ToDelegate converts a compiled element to the delegate index space.
// Dotted edges have no delegate counterpart and report false.
func (g *Graph) ToDelegate(el linear.Element) (linear.Element, bool) {
	if el.IsNode() {
		if !linear.InRange(g, el.Node) {
			return linear.Element{}, false
		}
		return linear.NodeElement(g.DelegateIndex(el.Node)), true
	}
	e := el.Edge
	if e.Kind == linear.EdgeDotted || !linear.InRange(g, e.Up) {
		return linear.Element{}, false
	}
	de := e
	de.Up = g.DelegateIndex(e.Up)
	if e.IsLoaded() {
		if !linear.InRange(g, e.Down) {
			return linear.Element{}, false
		}
		de.Down = g.DelegateIndex(e.Down)
	}
	if !linear.HasEdge(g.delegate, de) {
		return linear.Element{}, false
	}
	return linear.EdgeElement(de), true
}

// FromDelegate converts a delegate element to the compiled index space.
// Elements touching hidden nodes, and edges the compiled graph does not
// contain, report false.
func (g *Graph) FromDelegate(el linear.Element) (linear.Element, bool) {
	if el.IsNode() {
		v := g.VisibleIndex(el.Node)
		return linear.NodeElement(v), v != linear.NoNode
	}
	e := el.Edge
	ce := e
	if ce.Up = g.VisibleIndex(e.Up); ce.Up == linear.NoNode {
		return linear.Element{}, false
	}
	if e.IsLoaded() {
		if e.Kind == linear.EdgeDotted && !g.HasDottedEdge(e.Up, e.Down) {
			return linear.Element{}, false
		}
		if ce.Down = g.VisibleIndex(e.Down); ce.Down == linear.NoNode {
			return linear.Element{}, false
		}
	}
	return linear.EdgeElement(ce), true
}
