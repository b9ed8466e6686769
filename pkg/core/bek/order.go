package bek

import (
	"encoding/binary"
	"slices"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

// Order is a permutation of the node ids of a permanent graph.
type Order struct {
	toNew []int32
	toOld []int32
}

func newOrder(toOld []int32) *Order {
	toNew := make([]int32, len(toOld))
	for row, id := range toOld {
		toNew[id] = int32(row)
	}
	return &Order{toNew: toNew, toOld: toOld}
}

// Len returns the number of nodes.
func (o *Order) Len() int { return len(o.toOld) }

// Row returns the row of node id.
func (o *Order) Row(id int) int { return int(o.toNew[id]) }

// NodeID returns the node id at row.
func (o *Order) NodeID(row int) int { return int(o.toOld[row]) }

// Rows returns the full id -> row mapping.
func (o *Order) Rows() []int {
	rows := make([]int, len(o.toNew))
	for i, r := range o.toNew {
		rows[i] = int(r)
	}
	return rows
}

// MarshalBinary encodes the order as a uvarint count followed by the node
// id of each row.
func (o *Order) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, binary.MaxVarintLen32*(len(o.toOld)+1))
	buf = binary.AppendUvarint(buf, uint64(len(o.toOld)))
	for _, id := range o.toOld {
		buf = binary.AppendUvarint(buf, uint64(id))
	}
	return buf, nil
}

// UnmarshalBinary decodes an order written by MarshalBinary and checks that
// it is a permutation.
func (o *Order) UnmarshalBinary(data []byte) error {
	n, k := binary.Uvarint(data)
	if k <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bek order: bad length")
	}
	data = data[k:]
	if n > uint64(len(data)) {
		return errors.New(errors.ErrCodeInvalidInput, "bek order: length %d exceeds payload", n)
	}

	toOld := make([]int32, n)
	seen := make([]bool, n)
	for i := range toOld {
		id, k := binary.Uvarint(data)
		if k <= 0 || id >= n || seen[id] {
			return errors.New(errors.ErrCodeInvalidInput, "bek order: bad entry at row %d", i)
		}
		seen[id] = true
		toOld[i] = int32(id)
		data = data[k:]
	}
	if len(data) != 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bek order: %d trailing bytes", len(data))
	}
	*o = *newOrder(toOld)
	return nil
}

// View returns g with rows permuted by o.
func (o *Order) View(g *permanent.Graph) *Graph {
	return &Graph{g: g, o: o}
}

// Graph is a permanent graph seen through an [Order]. Indexes are rows;
// node ids stay the permanent ids.
type Graph struct {
	g *permanent.Graph
	o *Order
}

var _ linear.Graph = (*Graph)(nil)

// NodesCount returns the number of rows.
func (b *Graph) NodesCount() int { return b.g.NodesCount() }

// NodeID returns the permanent id at row.
func (b *Graph) NodeID(row int) int { return b.o.NodeID(row) }

// NodeIndex returns the row of permanent id, or NoNode.
func (b *Graph) NodeIndex(id int) int {
	if b.g.NodeIndex(id) == linear.NoNode {
		return linear.NoNode
	}
	return b.o.Row(id)
}

// AdjacentEdges returns the edges at row in row coordinates.
func (b *Graph) AdjacentEdges(row int, filter linear.EdgeFilter) []linear.Edge {
	id := b.o.NodeID(row)
	edges := b.g.AdjacentEdges(id, filter)
	ups := 0
	for i, e := range edges {
		if e.Down == id {
			ups++
		}
		e.Up = b.o.Row(e.Up)
		if e.IsLoaded() {
			e.Down = b.o.Row(e.Down)
		}
		edges[i] = e
	}
	slices.SortFunc(edges[:ups], func(x, y linear.Edge) int { return x.Up - y.Up })
	return edges
}

// Order returns the permutation behind the view.
func (b *Graph) Order() *Order { return b.o }
