// Package layout assigns every commit of a permanent graph to a lane.
//
// A lane (layout index) is a run of commits that renders as one straight
// vertical line: a commit continues the lane of a child that lists it as
// first parent, and starts a fresh lane otherwise. Lanes are the primary key
// of the left-to-right order of print elements and select the color of a
// branch.
package layout

import (
	"context"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

const cancelCheckInterval = 1 << 12

// Layout is the immutable lane assignment of a permanent graph.
type Layout struct {
	index    []int32
	heads    []int
	laneHead []int32
}

// Build computes the layout of g.
//
// # Algorithm
//
// Build makes a single pass over the nodes in id order, so every child is
// seen before its parents. Each lane remembers its tail, the last node that
// joined it. A node N inherits the lane of a child C when
//   - N is the first parent of C, and
//   - C is still the tail of its lane (no earlier parent took it over).
//
// If several children qualify, N takes the one with the lowest layout index,
// which keeps long branches straight. Otherwise N opens a fresh lane.
//
// Heads are the nodes without children, in order of appearance.
//
// # Performance
//
// Time complexity is O(V + E). Build checks ctx every few thousand nodes
// and returns a CANCELED error without a partial result.
func Build(ctx context.Context, g *permanent.Graph) (*Layout, error) {
	n := g.NodesCount()
	l := &Layout{index: make([]int32, n)}
	var tails []int32

	for id := 0; id < n; id++ {
		if id%cancelCheckInterval == 0 {
			if err := errors.Canceled(ctx, "layout"); err != nil {
				return nil, err
			}
		}

		children := g.UpNodes(id)
		if len(children) == 0 {
			l.heads = append(l.heads, id)
		}

		lane := int32(-1)
		for _, c := range children {
			if g.FirstParent(c) != id {
				continue
			}
			cl := l.index[c]
			if tails[cl] != int32(c) {
				continue
			}
			if lane < 0 || cl < lane {
				lane = cl
			}
		}
		if lane < 0 {
			lane = int32(len(tails))
			tails = append(tails, 0)
			l.laneHead = append(l.laneHead, int32(id))
		}
		tails[lane] = int32(id)
		l.index[id] = lane
	}
	return l, nil
}

// NodesCount returns the number of nodes the layout covers.
func (l *Layout) NodesCount() int { return len(l.index) }

// LayoutIndex returns the lane of node id.
func (l *Layout) LayoutIndex(id int) int { return int(l.index[id]) }

// Heads returns the nodes without children, in id order.
func (l *Layout) Heads() []int { return l.heads }

// LaneCount returns the number of lanes.
func (l *Layout) LaneCount() int { return len(l.laneHead) }

// LaneHead returns the node that opened lane, or NoNode if lane is unknown.
func (l *Layout) LaneHead(lane int) int {
	if lane < 0 || lane >= len(l.laneHead) {
		return linear.NoNode
	}
	return int(l.laneHead[lane])
}
