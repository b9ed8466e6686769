package bek

import (
	"context"
	"slices"

	"github.com/matzehuels/commitgraph/pkg/core/layout"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

const cancelCheckInterval = 1 << 12

// Timestamps supplies commit times by node id.
type Timestamps interface {
	Timestamp(id int) int64
}

// Sort computes the Bek order of g.
//
// # Algorithm
//
// Sort is Kahn's algorithm with a stack instead of a queue, so a branch is
// emitted completely before the sort moves on:
//  1. Push the heads, oldest first, so the newest head is emitted first.
//  2. Pop a node, emit it, and decrement the pending-children count of
//     each parent.
//  3. Push the parents that became ready, ordered by layout index, then
//     timestamp, then descending id. The last pushed is popped first, so
//     the side branch of a merge is emitted before its main line.
//
// Every child is emitted before its parents. The result depends only on
// (g, l, ts).
//
// # Performance
//
// Time complexity is O(V log V + E). Sort checks ctx every few thousand
// nodes and returns a CANCELED error without a partial result.
func Sort(ctx context.Context, g *permanent.Graph, l *layout.Layout, ts Timestamps) (*Order, error) {
	n := g.NodesCount()
	pending := make([]int32, n)
	for id := 0; id < n; id++ {
		pending[id] = int32(len(g.UpNodes(id)))
	}

	newestLast := func(a, b int) int {
		if ta, tb := ts.Timestamp(a), ts.Timestamp(b); ta != tb {
			if ta < tb {
				return -1
			}
			return 1
		}
		return b - a
	}
	byLane := func(a, b int) int {
		if la, lb := l.LayoutIndex(a), l.LayoutIndex(b); la != lb {
			return la - lb
		}
		return newestLast(a, b)
	}

	stack := slices.Clone(l.Heads())
	slices.SortFunc(stack, newestLast)

	toOld := make([]int32, 0, n)
	var ready []int
	for len(stack) > 0 {
		if len(toOld)%cancelCheckInterval == 0 {
			if err := errors.Canceled(ctx, "bek sort"); err != nil {
				return nil, err
			}
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		toOld = append(toOld, int32(id))

		ready = ready[:0]
		for _, p := range g.DownNodes(id) {
			pending[p]--
			if pending[p] == 0 {
				ready = append(ready, p)
			}
		}
		slices.SortFunc(ready, byLane)
		stack = append(stack, ready...)
	}

	if len(toOld) != n {
		return nil, errors.New(errors.ErrCodeInternal, "bek sort emitted %d of %d nodes", len(toOld), n)
	}
	return newOrder(toOld), nil
}
