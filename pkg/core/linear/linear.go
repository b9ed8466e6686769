package linear

import "slices"

// NoNode marks a missing endpoint. It is the Down index of every
// [EdgeNotLoad] edge and the result of failed index lookups.
const NoNode = -1

// EdgeKind distinguishes real edges from placeholder and synthetic ones.
type EdgeKind uint8

const (
	// EdgeNormal is a real link from a commit to one of its parents.
	EdgeNormal EdgeKind = iota
	// EdgeNotLoad points at a parent that is not part of the loaded graph.
	EdgeNotLoad
	// EdgeDotted is synthesized by collapsing and carries only connectivity.
	EdgeDotted
)

// String returns a short lowercase name for the kind.
func (k EdgeKind) String() string {
	switch k {
	case EdgeNormal:
		return "normal"
	case EdgeNotLoad:
		return "not-load"
	case EdgeDotted:
		return "dotted"
	default:
		return "unknown"
	}
}

// Edge is a directed edge between two node indexes of one graph.
// Up is always the child (smaller index); Down is the parent (larger index)
// or NoNode for not-load edges. Target is the ordinal of the missing parent
// for not-load edges and zero otherwise.
type Edge struct {
	Up     int
	Down   int
	Kind   EdgeKind
	Target int
}

// NewEdge returns a normal or dotted edge between a and b, ordering the
// endpoints so that Up < Down.
func NewEdge(a, b int, kind EdgeKind) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{Up: a, Down: b, Kind: kind}
}

// NotLoadEdge returns the edge from up to the missing parent with the given ordinal.
func NotLoadEdge(up, target int) Edge {
	return Edge{Up: up, Down: NoNode, Kind: EdgeNotLoad, Target: target}
}

// Other returns the endpoint opposite to index, or NoNode if the edge does
// not touch index or has no opposite endpoint.
func (e Edge) Other(index int) int {
	switch index {
	case e.Up:
		return e.Down
	case e.Down:
		return e.Up
	}
	return NoNode
}

// IsLoaded reports whether both endpoints are nodes of the graph.
func (e Edge) IsLoaded() bool { return e.Down != NoNode }

// EdgeFilter selects which adjacent edges [Graph.AdjacentEdges] returns.
type EdgeFilter uint8

const (
	// FilterUp selects edges towards children (the node is the Down endpoint).
	FilterUp EdgeFilter = 1 << iota
	// FilterDown selects edges towards parents (the node is the Up endpoint),
	// including not-load edges.
	FilterDown

	// FilterAll selects every adjacent edge.
	FilterAll = FilterUp | FilterDown
)

// Graph is a row-addressed view of a commit DAG.
//
// Implementations return freshly allocated slices from AdjacentEdges; callers
// may keep or modify them. Up edges are listed in increasing order of the
// child index, down edges in parent order (first parent first).
type Graph interface {
	// NodesCount returns the number of rows.
	NodesCount() int
	// NodeID returns the permanent node id of the node at index.
	NodeID(index int) int
	// NodeIndex returns the index of the node with the given permanent id,
	// or NoNode if the node is not part of this graph.
	NodeIndex(id int) int
	// AdjacentEdges returns the edges touching index that match filter.
	AdjacentEdges(index int, filter EdgeFilter) []Edge
}

// DownNodes returns the loaded parents of index in parent order.
func DownNodes(g Graph, index int) []int {
	edges := g.AdjacentEdges(index, FilterDown)
	nodes := make([]int, 0, len(edges))
	for _, e := range edges {
		if e.IsLoaded() {
			nodes = append(nodes, e.Down)
		}
	}
	return nodes
}

// UpNodes returns the children of index in increasing index order.
func UpNodes(g Graph, index int) []int {
	edges := g.AdjacentEdges(index, FilterUp)
	nodes := make([]int, 0, len(edges))
	for _, e := range edges {
		nodes = append(nodes, e.Up)
	}
	return nodes
}

// InRange reports whether index addresses a node of g.
func InRange(g Graph, index int) bool {
	return index >= 0 && index < g.NodesCount()
}

// HasEdge reports whether g contains e, comparing endpoints and kind.
func HasEdge(g Graph, e Edge) bool {
	if !InRange(g, e.Up) {
		return false
	}
	return slices.Contains(g.AdjacentEdges(e.Up, FilterDown), e)
}
