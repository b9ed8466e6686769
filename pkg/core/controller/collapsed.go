package controller

import (
	"context"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/commitgraph/pkg/core/collapsed"
	"github.com/matzehuels/commitgraph/pkg/core/linear"
)

// Collapsed lets the user fold linear fragments of the delegate graph into
// dotted edges and unfold them again.
type Collapsed struct {
	delegate Layer
	graph    *collapsed.Graph
	scope    *bitset.BitSet // delegate indexes that may be shown; nil means all
}

// NewCollapsed returns a layer over delegate with every node visible.
func NewCollapsed(delegate Layer) *Collapsed {
	return &Collapsed{delegate: delegate, graph: collapsed.New(delegate.Compiled())}
}

// NewCollapsedShowing returns a layer over delegate where only the nodes
// with the given delegate indexes are visible. The other nodes stay hidden
// for the lifetime of the layer, expand-all included.
func NewCollapsedShowing(ctx context.Context, delegate Layer, shown []int) (*Collapsed, error) {
	d := delegate.Compiled()
	g, err := collapsed.NewFiltered(ctx, d, shown)
	if err != nil {
		return nil, err
	}
	scope := bitset.New(uint(d.NodesCount()))
	for _, i := range shown {
		scope.Set(uint(i))
	}
	return &Collapsed{delegate: delegate, graph: g, scope: scope}, nil
}

// inScope reports whether delegate index d may ever be shown.
func (c *Collapsed) inScope(d int) bool {
	return c.scope == nil || c.scope.Test(uint(d))
}

func (c *Collapsed) Compiled() linear.Graph { return c.graph }
func (c *Collapsed) Delegate() Layer        { return c.delegate }
func (*Collapsed) layer()                   {}

// Graph returns the collapsed graph the layer maintains.
func (c *Collapsed) Graph() *collapsed.Graph { return c.graph }

func (c *Collapsed) dispatch(ctx context.Context, a Action) (Answer, error) {
	switch a.Verb {
	case VerbCollapseAll, VerbExpandAll:
		return c.all(ctx, a)
	}
	if a.Element == nil {
		return Answer{}, nil
	}
	el := *a.Element

	if !el.IsNode() && el.Edge.Kind == linear.EdgeDotted {
		e := el.Edge
		switch a.Verb {
		case VerbHover:
			return Answer{Cursor: CursorHand}, nil
		case VerbSelect:
			return Answer{Selection: permanentIDs(c.graph, []int{e.Up, e.Down})}, nil
		case VerbClick:
			return c.expand(ctx, c.graph.DelegateIndex(e.Up), c.graph.DelegateIndex(e.Down))
		}
		return Answer{}, nil
	}

	if el.IsNode() && (a.Verb == VerbClick || a.Verb == VerbHover) {
		if hidden := c.fragment(el.Node); len(hidden) > 0 && !c.delegateClaims(ctx, el) {
			if a.Verb == VerbHover {
				return Answer{Cursor: CursorHand}, nil
			}
			return c.hide(ctx, hidden)
		}
	}

	answer, err := dispatchDelegate(ctx, c, a, c.graph.ToDelegate)
	if err != nil {
		return Answer{}, err
	}
	if err := c.delegateChanged(ctx, answer.Change); err != nil {
		return Answer{}, err
	}
	return answer, nil
}

// delegateClaims reports whether the delegate reacts to el itself, in which
// case clicks on el go to the delegate.
func (c *Collapsed) delegateClaims(ctx context.Context, el linear.Element) bool {
	del, ok := c.graph.ToDelegate(el)
	if !ok {
		return false
	}
	answer, err := Dispatch(ctx, c.delegate, Action{Verb: VerbHover, Element: &del})
	return err == nil && answer.Cursor == CursorHand
}

// delegateChanged regenerates the dotted edges around nodes whose delegate
// edges changed.
func (c *Collapsed) delegateChanged(ctx context.Context, change *Change) error {
	if change.IsEmpty() {
		return nil
	}
	d := c.delegate.Compiled()
	var touched []int
	for _, ids := range [][]int{change.Shown, change.Hidden, change.Touched} {
		for _, id := range ids {
			if idx := d.NodeIndex(id); idx != linear.NoNode {
				touched = append(touched, idx)
			}
		}
	}
	return c.graph.Touch(ctx, touched)
}

// isInterior reports whether compiled node v has exactly one child and one
// loaded parent.
func isInterior(g linear.Graph, v int) bool {
	ups := g.AdjacentEdges(v, linear.FilterUp)
	downs := g.AdjacentEdges(v, linear.FilterDown)
	return len(ups) == 1 && len(downs) == 1 && downs[0].IsLoaded()
}

// fragment returns the delegate indexes of the linear fragment through
// compiled node v: the run of interior nodes containing v, strictly between
// the branch points above and below it. It is empty if v is not interior.
func (c *Collapsed) fragment(v int) []int {
	g := c.graph
	if !isInterior(g, v) {
		return nil
	}
	nodes := []int{g.DelegateIndex(v)}
	for cur := g.AdjacentEdges(v, linear.FilterUp)[0].Up; isInterior(g, cur); cur = g.AdjacentEdges(cur, linear.FilterUp)[0].Up {
		nodes = append(nodes, g.DelegateIndex(cur))
	}
	for cur := g.AdjacentEdges(v, linear.FilterDown)[0].Down; isInterior(g, cur); cur = g.AdjacentEdges(cur, linear.FilterDown)[0].Down {
		nodes = append(nodes, g.DelegateIndex(cur))
	}
	slices.Sort(nodes)
	return nodes
}

func (c *Collapsed) hide(ctx context.Context, nodes []int) (Answer, error) {
	return c.apply(ctx, nodes, false)
}

// expand shows the hidden nodes on delegate paths from up to down whose
// interior is hidden.
func (c *Collapsed) expand(ctx context.Context, up, down int) (Answer, error) {
	d := c.graph.Delegate()
	below := c.hiddenReach(up, func(i int) []int { return linear.DownNodes(d, i) })
	above := c.hiddenReach(down, func(i int) []int { return linear.UpNodes(d, i) })
	var nodes []int
	for i := range below {
		if above[i] {
			nodes = append(nodes, i)
		}
	}
	slices.Sort(nodes)
	return c.apply(ctx, nodes, true)
}

// hiddenReach returns the hidden nodes reachable from start through hidden
// nodes only.
func (c *Collapsed) hiddenReach(start int, next func(int) []int) map[int]bool {
	seen := make(map[int]bool)
	stack := []int{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range next(cur) {
			if !seen[n] && !c.graph.IsVisible(n) {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}

// apply sets the visibility of sorted delegate indexes in one Modify scope.
// Nodes outside the scope are never shown.
func (c *Collapsed) apply(ctx context.Context, nodes []int, visible bool) (Answer, error) {
	if visible && c.scope != nil {
		nodes = slices.DeleteFunc(slices.Clone(nodes), func(n int) bool { return !c.inScope(n) })
	}
	if len(nodes) == 0 {
		return Answer{}, nil
	}
	lo, hi := nodes[0], nodes[len(nodes)-1]+1
	delta, err := c.graph.Modify(ctx, lo, hi, func(m *collapsed.Mutator) error {
		for _, n := range nodes {
			m.SetVisible(n, visible)
		}
		return nil
	})
	if err != nil || delta.IsEmpty() {
		return Answer{}, err
	}
	d := c.graph.Delegate()
	return Answer{Change: &Change{
		Shown:  permanentIDs(d, delta.Shown),
		Hidden: permanentIDs(d, delta.Hidden),
	}}, nil
}

// all forwards collapse-all and expand-all to the delegate, then hides
// every interior node or shows every in-scope node of this layer.
func (c *Collapsed) all(ctx context.Context, a Action) (Answer, error) {
	below, err := Dispatch(ctx, c.delegate, Action{Verb: a.Verb})
	if err != nil {
		return Answer{}, err
	}
	if err := c.delegateChanged(ctx, below.Change); err != nil {
		return Answer{}, err
	}

	var nodes []int
	if a.Verb == VerbExpandAll {
		for i := 0; i < c.graph.Delegate().NodesCount(); i++ {
			if !c.graph.IsVisible(i) && c.inScope(i) {
				nodes = append(nodes, i)
			}
		}
	} else {
		for v := 0; v < c.graph.NodesCount(); v++ {
			if isInterior(c.graph, v) {
				nodes = append(nodes, c.graph.DelegateIndex(v))
			}
		}
	}
	own, err := c.apply(ctx, nodes, a.Verb == VerbExpandAll)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Change: below.Change.merge(own.Change)}, nil
}

// Filtered shows a fixed set of nodes joined by dotted edges and ignores
// every action.
type Filtered struct {
	delegate Layer
	graph    *collapsed.Graph
}

// NewFiltered returns a layer over delegate showing only the nodes with
// the given permanent ids. Unknown ids are skipped.
func NewFiltered(ctx context.Context, delegate Layer, matched []int) (*Filtered, error) {
	d := delegate.Compiled()
	shown := make([]int, 0, len(matched))
	for _, id := range matched {
		if idx := d.NodeIndex(id); idx != linear.NoNode {
			shown = append(shown, idx)
		}
	}
	g, err := collapsed.NewFiltered(ctx, d, shown)
	if err != nil {
		return nil, err
	}
	return &Filtered{delegate: delegate, graph: g}, nil
}

func (f *Filtered) Compiled() linear.Graph { return f.graph }
func (f *Filtered) Delegate() Layer        { return f.delegate }
func (*Filtered) layer()                   {}
