package collapsed

import (
	"context"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

// Mutator stages visibility changes inside a [Graph.Modify] scope.
// Nothing is applied until the scope function returns without error.
type Mutator struct {
	g      *Graph
	lo, hi int
	staged map[int]bool
	order  []int
	err    error
}

// SetVisible stages the visibility of delegate index d. Indexes outside
// the scope make Modify fail with OUT_OF_RANGE.
func (m *Mutator) SetVisible(d int, visible bool) {
	if d < m.lo || d >= m.hi {
		if m.err == nil {
			m.err = errors.New(errors.ErrCodeOutOfRange, "node %d outside modify scope [%d, %d)", d, m.lo, m.hi)
		}
		return
	}
	if _, ok := m.staged[d]; !ok {
		m.order = append(m.order, d)
	}
	m.staged[d] = visible
}

// SetRange stages the visibility of delegate indexes [lo, hi).
func (m *Mutator) SetRange(lo, hi int, visible bool) {
	for d := lo; d < hi; d++ {
		m.SetVisible(d, visible)
	}
}

// IsVisible reports the visibility of d including staged changes.
func (m *Mutator) IsVisible(d int) bool {
	if v, ok := m.staged[d]; ok {
		return v
	}
	return m.g.IsVisible(d)
}

// Delta lists the delegate indexes a Modify made visible or hidden.
type Delta struct {
	Shown  []int
	Hidden []int
}

// IsEmpty reports whether the delta changed nothing.
func (d Delta) IsEmpty() bool { return len(d.Shown) == 0 && len(d.Hidden) == 0 }

// Modify runs fn with a mutator scoped to delegate indexes [lo, hi), then
// applies the staged changes and regenerates the dotted edges affected by
// them. If fn fails, a staged index lies outside the scope, or ctx is
// canceled during regeneration, nothing changes.
func (g *Graph) Modify(ctx context.Context, lo, hi int, fn func(m *Mutator) error) (Delta, error) {
	if err := errors.ValidateRange(lo, hi, g.delegate.NodesCount()); err != nil {
		return Delta{}, err
	}
	m := &Mutator{g: g, lo: lo, hi: hi, staged: make(map[int]bool)}
	if err := fn(m); err != nil {
		return Delta{}, err
	}
	if m.err != nil {
		return Delta{}, m.err
	}

	var delta Delta
	for _, d := range m.order {
		v := m.staged[d]
		if v == g.IsVisible(d) {
			continue
		}
		if v {
			delta.Shown = append(delta.Shown, d)
		} else {
			delta.Hidden = append(delta.Hidden, d)
		}
	}
	slices.Sort(delta.Shown)
	slices.Sort(delta.Hidden)
	if delta.IsEmpty() {
		return delta, nil
	}

	changed := append(slices.Clone(delta.Shown), delta.Hidden...)
	for _, d := range changed {
		g.visible.Flip(uint(d))
	}
	if err := g.regenerate(ctx, changed, nil, delta.Hidden); err != nil {
		for _, d := range changed {
			g.visible.Flip(uint(d))
		}
		return Delta{}, err
	}
	for _, d := range delta.Shown {
		g.counts.add(d, 1)
	}
	for _, d := range delta.Hidden {
		g.counts.add(d, -1)
	}
	return delta, nil
}

// SetVisible shows or hides the delegate indexes [lo, hi).
func (g *Graph) SetVisible(ctx context.Context, lo, hi int, visible bool) (Delta, error) {
	return g.Modify(ctx, lo, hi, func(m *Mutator) error {
		m.SetRange(lo, hi, visible)
		return nil
	})
}

// Touch regenerates the dotted edges passing through delegate indexes
// whose delegate edges changed without a visibility change.
func (g *Graph) Touch(ctx context.Context, touched []int) error {
	n := g.delegate.NodesCount()
	for _, d := range touched {
		if err := errors.ValidateRow(d, n); err != nil {
			return err
		}
	}
	return g.regenerate(ctx, nil, touched, nil)
}

// Regenerate rebuilds every dotted edge from scratch.
func (g *Graph) Regenerate(ctx context.Context) error {
	var uppers []int
	for i, ok := g.visible.NextSet(0); ok; i, ok = g.visible.NextSet(i + 1) {
		uppers = append(uppers, int(i))
	}
	fresh, err := g.generate(ctx, uppers)
	if err != nil {
		return err
	}
	g.dottedDown = make(map[int][]int)
	g.dottedUp = make(map[int][]int)
	g.install(uppers, fresh)
	return nil
}

// regenerate recomputes the dotted edges of every visible node whose hidden
// reach may include a changed or touched node. The visibility bits must
// already hold the new state; nodes in hidden lost all their dotted edges.
// On error the dotted edges are untouched.
func (g *Graph) regenerate(ctx context.Context, changed, touched, hidden []int) error {
	uppers := g.affectedUppers(changed, touched)
	fresh, err := g.generate(ctx, uppers)
	if err != nil {
		return err
	}
	for _, d := range hidden {
		g.dropUpper(d)
		for _, u := range g.dottedUp[d] {
			g.dottedDown[u] = removeSorted(g.dottedDown[u], d)
			if len(g.dottedDown[u]) == 0 {
				delete(g.dottedDown, u)
			}
		}
		delete(g.dottedUp, d)
	}
	g.install(uppers, fresh)
	return nil
}

// affectedUppers walks up from every changed or touched node through nodes
// that are hidden before or after the change, and returns the visible nodes
// it meets. Changed nodes were hidden in one of the two states, so the walk
// always continues past them.
func (g *Graph) affectedUppers(changed, touched []int) []int {
	n := g.delegate.NodesCount()
	seen := bitset.New(uint(n))
	isChanged := bitset.New(uint(n))
	var stack, uppers []int

	push := func(d int) {
		if seen.Test(uint(d)) {
			return
		}
		seen.Set(uint(d))
		if g.IsVisible(d) {
			uppers = append(uppers, d)
		}
		if !g.IsVisible(d) || isChanged.Test(uint(d)) {
			stack = append(stack, d)
		}
	}
	for _, d := range changed {
		isChanged.Set(uint(d))
	}
	for _, d := range changed {
		push(d)
	}
	for _, d := range touched {
		push(d)
	}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, u := range linear.UpNodes(g.delegate, d) {
			push(u)
		}
	}
	slices.Sort(uppers)
	return uppers
}

// generate computes the dotted targets of each upper: the visible nodes
// reached from it by a delegate path with at least one hidden interior node.
func (g *Graph) generate(ctx context.Context, uppers []int) ([][]int, error) {
	n := g.delegate.NodesCount()
	seen := bitset.New(uint(n))
	var touched, stack []int
	fresh := make([][]int, len(uppers))

	steps := 0
	for i, u := range uppers {
		var targets []int
		for _, p := range linear.DownNodes(g.delegate, u) {
			if !g.IsVisible(p) && !seen.Test(uint(p)) {
				seen.Set(uint(p))
				touched = append(touched, p)
				stack = append(stack, p)
			}
		}
		for len(stack) > 0 {
			if steps++; steps%cancelCheckInterval == 0 {
				if err := errors.Canceled(ctx, "dotted edge generation"); err != nil {
					return nil, err
				}
			}
			h := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, p := range linear.DownNodes(g.delegate, h) {
				if seen.Test(uint(p)) {
					continue
				}
				seen.Set(uint(p))
				touched = append(touched, p)
				if g.IsVisible(p) {
					targets = append(targets, p)
				} else {
					stack = append(stack, p)
				}
			}
		}
		for _, t := range touched {
			seen.Clear(uint(t))
		}
		touched = touched[:0]
		slices.Sort(targets)
		fresh[i] = targets
	}
	if err := errors.Canceled(ctx, "dotted edge generation"); err != nil {
		return nil, err
	}
	return fresh, nil
}

// install replaces the dotted edges of each upper with its fresh targets.
func (g *Graph) install(uppers []int, fresh [][]int) {
	for i, u := range uppers {
		g.dropUpper(u)
		if len(fresh[i]) == 0 {
			continue
		}
		g.dottedDown[u] = fresh[i]
		for _, l := range fresh[i] {
			g.dottedUp[l] = insertSorted(g.dottedUp[l], u)
		}
	}
}

// dropUpper removes the dotted edges leaving u.
func (g *Graph) dropUpper(u int) {
	for _, l := range g.dottedDown[u] {
		g.dottedUp[l] = removeSorted(g.dottedUp[l], u)
		if len(g.dottedUp[l]) == 0 {
			delete(g.dottedUp, l)
		}
	}
	delete(g.dottedDown, u)
}

func insertSorted(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}

func removeSorted(s []int, v int) []int {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return s
	}
	return slices.Delete(s, i, i+1)
}
