// Package reachable answers reachability questions over a permanent graph:
// which commits a set of heads contains, and which heads contain a commit.
package reachable

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

const cancelCheckInterval = 1 << 12

// Nodes walks a permanent graph. It keeps a pool of visited sets so repeated
// queries do not reallocate one bit per commit, and is safe for concurrent use.
type Nodes struct {
	g    *permanent.Graph
	pool sync.Pool
}

// New returns a walker over g.
func New(g *permanent.Graph) *Nodes {
	r := &Nodes{g: g}
	r.pool.New = func() any { return bitset.New(uint(g.NodesCount())) }
	return r
}

func (r *Nodes) visited() *bitset.BitSet { return r.pool.Get().(*bitset.BitSet) }

func (r *Nodes) release(b *bitset.BitSet) {
	b.ClearAll()
	r.pool.Put(b)
}

// Walk visits every node reachable from starts over down edges, breadth
// first, starts included. visit is called once per node; returning false
// stops the walk. Out-of-range starts are reported as OUT_OF_RANGE.
func (r *Nodes) Walk(ctx context.Context, starts []int, visit func(id int) bool) error {
	n := r.g.NodesCount()
	for _, s := range starts {
		if err := errors.ValidateRow(s, n); err != nil {
			return err
		}
	}

	seen := r.visited()
	defer r.release(seen)

	queue := make([]int, 0, len(starts))
	for _, s := range starts {
		if !seen.Test(uint(s)) {
			seen.Set(uint(s))
			queue = append(queue, s)
		}
	}
	for steps := 0; len(queue) > 0; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := errors.Canceled(ctx, "reachability walk"); err != nil {
				return err
			}
		}
		id := queue[0]
		queue = queue[1:]
		if !visit(id) {
			return nil
		}
		for _, p := range r.g.DownNodes(id) {
			if !seen.Test(uint(p)) {
				seen.Set(uint(p))
				queue = append(queue, p)
			}
		}
	}
	return nil
}

// ContainingBranches returns the members of branches from which id is
// reachable, in the order given. The walk goes up from id and stops as soon
// as every branch has been found.
func (r *Nodes) ContainingBranches(ctx context.Context, id int, branches []int) ([]int, error) {
	n := r.g.NodesCount()
	if err := errors.ValidateRow(id, n); err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, nil
	}

	wanted := bitset.New(uint(n))
	for _, b := range branches {
		if err := errors.ValidateRow(b, n); err != nil {
			return nil, err
		}
		wanted.Set(uint(b))
	}
	remaining := wanted.Count()

	seen := r.visited()
	defer r.release(seen)

	seen.Set(uint(id))
	queue := []int{id}
	for steps := 0; len(queue) > 0 && remaining > 0; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := errors.Canceled(ctx, "containing branches"); err != nil {
				return nil, err
			}
		}
		cur := queue[0]
		queue = queue[1:]
		if wanted.Test(uint(cur)) {
			remaining--
		}
		for _, c := range r.g.UpNodes(cur) {
			if !seen.Test(uint(c)) {
				seen.Set(uint(c))
				queue = append(queue, c)
			}
		}
	}

	var found []int
	for _, b := range branches {
		if seen.Test(uint(b)) && !containsInt(found, b) {
			found = append(found, b)
		}
	}
	return found, nil
}

// Condition reports membership in the set of nodes reachable from a fixed
// set of heads.
type Condition struct {
	set *bitset.BitSet
}

// Contains reports whether id is reachable from the heads.
func (c Condition) Contains(id int) bool {
	return id >= 0 && c.set.Test(uint(id))
}

// Count returns the number of reachable nodes.
func (c Condition) Count() int { return int(c.set.Count()) }

// ContainedInBranchCondition computes the nodes reachable from heads.
func (r *Nodes) ContainedInBranchCondition(ctx context.Context, heads []int) (Condition, error) {
	set := bitset.New(uint(r.g.NodesCount()))
	err := r.Walk(ctx, heads, func(id int) bool {
		set.Set(uint(id))
		return true
	})
	if err != nil {
		return Condition{}, err
	}
	return Condition{set: set}, nil
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
