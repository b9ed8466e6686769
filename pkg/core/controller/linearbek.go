package controller

import (
	"context"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
)

// motif is a merge M whose parents are P and X, where X is a single-commit
// branch off P: X has M as its only child and P as its only parent.
type motif struct {
	m, x, p int
}

// LinearBek folds motifs by hiding the direct edge M->P, so the triangle
// renders as the straight line M->X->P. All motifs start folded.
type LinearBek struct {
	delegate Layer
	motifs   map[int]motif // by M
	byX      map[int]int   // X -> M
	folded   *bitset.BitSet
	view     *linearBekGraph
}

// NewLinearBek detects the motifs of delegate's compiled graph and folds
// all of them.
func NewLinearBek(delegate Layer) *LinearBek {
	g := delegate.Compiled()
	n := g.NodesCount()
	lb := &LinearBek{
		delegate: delegate,
		motifs:   make(map[int]motif),
		byX:      make(map[int]int),
		folded:   bitset.New(uint(n)),
	}
	for m := 0; m < n; m++ {
		mo, ok := detectMotif(g, m)
		if !ok {
			continue
		}
		lb.motifs[m] = mo
		lb.byX[mo.x] = m
		lb.folded.Set(uint(m))
	}
	lb.view = &linearBekGraph{lb: lb, g: g}
	return lb
}

func detectMotif(g linear.Graph, m int) (motif, bool) {
	downs := g.AdjacentEdges(m, linear.FilterDown)
	if len(downs) != 2 || !downs[0].IsLoaded() || !downs[1].IsLoaded() {
		return motif{}, false
	}
	for i, e := range downs {
		x, p := e.Down, downs[1-i].Down
		if len(linear.UpNodes(g, x)) != 1 {
			continue
		}
		xd := g.AdjacentEdges(x, linear.FilterDown)
		if len(xd) == 1 && xd[0].Down == p {
			return motif{m: m, x: x, p: p}, true
		}
	}
	return motif{}, false
}

func (lb *LinearBek) Compiled() linear.Graph { return lb.view }
func (lb *LinearBek) Delegate() Layer        { return lb.delegate }
func (*LinearBek) layer()                    {}

// MotifCount returns the number of detected motifs.
func (lb *LinearBek) MotifCount() int { return len(lb.motifs) }

// IsFolded reports whether the motif merging at m is folded.
func (lb *LinearBek) IsFolded(m int) bool {
	_, ok := lb.motifs[m]
	return ok && lb.folded.Test(uint(m))
}

// target returns the motif an element belongs to and the fold state the
// element asks for: clicking X or an edge of the M->X->P line unfolds, and
// clicking the direct edge M->P folds.
func (lb *LinearBek) target(el linear.Element) (motif, bool, bool) {
	if el.IsNode() {
		m, ok := lb.byX[el.Node]
		if !ok || !lb.folded.Test(uint(m)) {
			return motif{}, false, false
		}
		return lb.motifs[m], false, true
	}
	e := el.Edge
	if mo, ok := lb.motifs[e.Up]; ok && e.Down == mo.p {
		return mo, true, !lb.folded.Test(uint(mo.m))
	}
	if mo, ok := lb.motifs[e.Up]; ok && e.Down == mo.x && lb.folded.Test(uint(mo.m)) {
		return mo, false, true
	}
	if m, ok := lb.byX[e.Up]; ok && lb.folded.Test(uint(m)) {
		return lb.motifs[m], false, true
	}
	return motif{}, false, false
}

func (lb *LinearBek) dispatch(ctx context.Context, a Action) (Answer, error) {
	switch a.Verb {
	case VerbCollapseAll, VerbExpandAll:
		return Answer{Change: lb.setAll(a.Verb == VerbCollapseAll)}, nil
	case VerbClick, VerbHover:
		if a.Element == nil {
			break
		}
		mo, fold, ok := lb.target(*a.Element)
		if !ok {
			break
		}
		if a.Verb == VerbHover {
			return Answer{Cursor: CursorHand}, nil
		}
		return Answer{Change: lb.set(mo, fold)}, nil
	}
	return dispatchDelegate(ctx, lb, a, lb.toDelegate)
}

func (lb *LinearBek) set(mo motif, fold bool) *Change {
	if lb.folded.Test(uint(mo.m)) == fold {
		return nil
	}
	lb.folded.SetTo(uint(mo.m), fold)
	return &Change{Touched: permanentIDs(lb.view, []int{mo.m, mo.x, mo.p})}
}

func (lb *LinearBek) setAll(fold bool) *Change {
	var touched []int
	ms := make([]int, 0, len(lb.motifs))
	for m := range lb.motifs {
		ms = append(ms, m)
	}
	slices.Sort(ms)
	for _, m := range ms {
		mo := lb.motifs[m]
		if lb.folded.Test(uint(m)) == fold {
			continue
		}
		lb.folded.SetTo(uint(m), fold)
		touched = append(touched, mo.m, mo.x, mo.p)
	}
	if len(touched) == 0 {
		return nil
	}
	return &Change{Touched: permanentIDs(lb.view, touched)}
}

// toDelegate is the identity: LinearBek keeps the delegate's rows and only
// drops edges.
func (lb *LinearBek) toDelegate(el linear.Element) (linear.Element, bool) {
	if !el.IsNode() && !linear.HasEdge(lb.delegate.Compiled(), el.Edge) {
		return linear.Element{}, false
	}
	return el, true
}

// linearBekGraph is the delegate graph without the direct edges of folded
// motifs.
type linearBekGraph struct {
	lb *LinearBek
	g  linear.Graph
}

func (v *linearBekGraph) NodesCount() int      { return v.g.NodesCount() }
func (v *linearBekGraph) NodeID(index int) int { return v.g.NodeID(index) }
func (v *linearBekGraph) NodeIndex(id int) int { return v.g.NodeIndex(id) }

func (v *linearBekGraph) AdjacentEdges(index int, filter linear.EdgeFilter) []linear.Edge {
	edges := v.g.AdjacentEdges(index, filter)
	return slices.DeleteFunc(edges, v.hidden)
}

func (v *linearBekGraph) hidden(e linear.Edge) bool {
	mo, ok := v.lb.motifs[e.Up]
	return ok && e.Down == mo.p && v.lb.folded.Test(uint(mo.m))
}
