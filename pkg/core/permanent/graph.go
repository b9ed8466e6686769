package permanent

import "github.com/matzehuels/commitgraph/pkg/core/linear"

// Graph is the permanent linear graph: node index and node id coincide,
// every down edge points to a larger index, and each down edge at A is
// mirrored by an up edge at its parent.
//
// Adjacency is stored in compressed sparse rows. Entries of down that are
// negative encode not-load parents as -(ordinal+1).
type Graph struct {
	downStart []int32
	down      []int32
	upStart   []int32
	up        []int32
}

var _ linear.Graph = (*Graph)(nil)

// NodesCount returns the number of commits in the graph.
func (g *Graph) NodesCount() int { return len(g.downStart) - 1 }

// NodeID returns index; permanent ids are permanent indexes.
func (g *Graph) NodeID(index int) int { return index }

// NodeIndex returns id if it addresses a node, NoNode otherwise.
func (g *Graph) NodeIndex(id int) int {
	if id < 0 || id >= g.NodesCount() {
		return linear.NoNode
	}
	return id
}

// AdjacentEdges returns the up edges of index followed by its down edges.
func (g *Graph) AdjacentEdges(index int, filter linear.EdgeFilter) []linear.Edge {
	var edges []linear.Edge
	if filter&linear.FilterUp != 0 {
		ups := g.up[g.upStart[index]:g.upStart[index+1]]
		for _, child := range ups {
			edges = append(edges, linear.Edge{Up: int(child), Down: index})
		}
	}
	if filter&linear.FilterDown != 0 {
		downs := g.down[g.downStart[index]:g.downStart[index+1]]
		for _, parent := range downs {
			if parent < 0 {
				edges = append(edges, linear.NotLoadEdge(index, int(-parent-1)))
				continue
			}
			edges = append(edges, linear.Edge{Up: index, Down: int(parent)})
		}
	}
	return edges
}

// DownNodes returns the loaded parents of id, first parent first.
func (g *Graph) DownNodes(id int) []int {
	downs := g.down[g.downStart[id]:g.downStart[id+1]]
	nodes := make([]int, 0, len(downs))
	for _, p := range downs {
		if p >= 0 {
			nodes = append(nodes, int(p))
		}
	}
	return nodes
}

// UpNodes returns the children of id in increasing id order.
func (g *Graph) UpNodes(id int) []int {
	ups := g.up[g.upStart[id]:g.upStart[id+1]]
	nodes := make([]int, len(ups))
	for i, c := range ups {
		nodes[i] = int(c)
	}
	return nodes
}

// FirstParent returns the primary parent of id, or NoNode if the first
// parent is missing or id is a root.
func (g *Graph) FirstParent(id int) int {
	start, end := g.downStart[id], g.downStart[id+1]
	if start == end || g.down[start] < 0 {
		return linear.NoNode
	}
	return int(g.down[start])
}

// NotLoadedParents returns the missing-parent ordinals of id.
func (g *Graph) NotLoadedParents(id int) []int {
	var ordinals []int
	for _, p := range g.down[g.downStart[id]:g.downStart[id+1]] {
		if p < 0 {
			ordinals = append(ordinals, int(-p-1))
		}
	}
	return ordinals
}

// EdgeCount returns the number of loaded parent links.
func (g *Graph) EdgeCount() int { return len(g.up) }
