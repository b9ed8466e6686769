package controller

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/commitgraph/pkg/core/bek"
	"github.com/matzehuels/commitgraph/pkg/core/internal/testgraph"
	"github.com/matzehuels/commitgraph/pkg/core/layout"
	"github.com/matzehuels/commitgraph/pkg/core/linear"
)

func node(i int) *linear.Element {
	el := linear.NodeElement(i)
	return &el
}

func edge(up, down int, kind linear.EdgeKind) *linear.Element {
	el := linear.EdgeElement(linear.Edge{Up: up, Down: down, Kind: kind})
	return &el
}

func dispatch(t *testing.T, l Layer, verb Verb, el *linear.Element) Answer {
	t.Helper()
	answer, err := Dispatch(context.Background(), l, Action{Verb: verb, Element: el})
	if err != nil {
		t.Fatalf("Dispatch(%v, %v): %v", verb, el, err)
	}
	return answer
}

// edges lists every compiled down edge as permanent ids.
func edges(g linear.Graph) []linear.Edge {
	var out []linear.Edge
	for i := 0; i < g.NodesCount(); i++ {
		for _, e := range g.AdjacentEdges(i, linear.FilterDown) {
			e.Up = g.NodeID(e.Up)
			if e.IsLoaded() {
				e.Down = g.NodeID(e.Down)
			}
			out = append(out, e)
		}
	}
	return out
}

func TestBaseSelect(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	base := NewBase(g)

	tests := []struct {
		name string
		el   *linear.Element
		want []int
	}{
		{"node", node(3), []int{3}},
		{"edge", edge(3, 5, linear.EdgeNormal), []int{3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer := dispatch(t, base, VerbSelect, tt.el)
			if !slices.Equal(answer.Selection, tt.want) {
				t.Errorf("Selection = %v, want %v", answer.Selection, tt.want)
			}
		})
	}

	if answer := dispatch(t, base, VerbClick, node(3)); !answer.IsEmpty() {
		t.Errorf("click on base = %+v, want empty", answer)
	}
	if answer := dispatch(t, base, VerbSelect, edge(3, 6, linear.EdgeNormal)); !answer.IsEmpty() {
		t.Errorf("select of missing edge = %+v, want empty", answer)
	}
	if answer := dispatch(t, base, VerbSelect, node(9)); !answer.IsEmpty() {
		t.Errorf("select out of range = %+v, want empty", answer)
	}
}

func TestBekSelectTranslatesRows(t *testing.T) {
	g, info := testgraph.Build(testgraph.OneMerge())
	l, err := layout.Build(context.Background(), g)
	if err != nil {
		t.Fatalf("layout.Build: %v", err)
	}
	order, err := bek.Sort(context.Background(), g, l, info)
	if err != nil {
		t.Fatalf("bek.Sort: %v", err)
	}
	b := NewBek(NewBase(g), order)

	// Row 4 holds commit 5 in Bek order.
	answer := dispatch(t, b, VerbSelect, node(4))
	if !slices.Equal(answer.Selection, []int{5}) {
		t.Errorf("Selection = %v, want [5]", answer.Selection)
	}
	answer = dispatch(t, b, VerbSelect, edge(3, 4, linear.EdgeNormal))
	if !slices.Equal(answer.Selection, []int{3, 5}) {
		t.Errorf("Selection = %v, want [3 5]", answer.Selection)
	}
	if BaseOf(b).Compiled() != g {
		t.Error("BaseOf should return the base over g")
	}
}

// triangle is a merge 0 of parents 2 and 1, where 1 is a single commit on
// top of 2, followed by a plain chain 2-3.
func triangle() [][]int {
	return [][]int{{2, 1}, {2}, {3}, {}}
}

func TestLinearBekFolding(t *testing.T) {
	g, _ := testgraph.Build(triangle())
	lb := NewLinearBek(NewBase(g))

	if lb.MotifCount() != 1 || !lb.IsFolded(0) {
		t.Fatalf("motifs = %d, folded(0) = %v, want 1 and true", lb.MotifCount(), lb.IsFolded(0))
	}
	folded := []linear.Edge{{Up: 0, Down: 1}, {Up: 1, Down: 2}, {Up: 2, Down: 3}}
	if got := edges(lb.Compiled()); !slices.Equal(got, folded) {
		t.Fatalf("folded edges = %v, want %v", got, folded)
	}

	if answer := dispatch(t, lb, VerbHover, node(1)); answer.Cursor != CursorHand {
		t.Errorf("hover on folded motif: cursor %v, want hand", answer.Cursor)
	}

	answer := dispatch(t, lb, VerbClick, node(1))
	if answer.Change == nil || !slices.Equal(answer.Change.Touched, []int{0, 1, 2}) {
		t.Fatalf("unfold change = %+v, want touched [0 1 2]", answer.Change)
	}
	unfolded := []linear.Edge{{Up: 0, Down: 2}, {Up: 0, Down: 1}, {Up: 1, Down: 2}, {Up: 2, Down: 3}}
	if got := edges(lb.Compiled()); !slices.Equal(got, unfolded) {
		t.Fatalf("unfolded edges = %v, want %v", got, unfolded)
	}

	// Clicking the restored direct edge folds the motif again.
	dispatch(t, lb, VerbClick, edge(0, 2, linear.EdgeNormal))
	if !lb.IsFolded(0) {
		t.Error("click on direct edge should fold")
	}

	dispatch(t, lb, VerbExpandAll, nil)
	if lb.IsFolded(0) {
		t.Error("expand-all should unfold every motif")
	}
	if answer := dispatch(t, lb, VerbExpandAll, nil); !answer.IsEmpty() {
		t.Errorf("second expand-all = %+v, want empty", answer)
	}
	dispatch(t, lb, VerbCollapseAll, nil)
	if !lb.IsFolded(0) {
		t.Error("collapse-all should fold every motif")
	}
}

func TestLinearBekIgnoresNonMotifs(t *testing.T) {
	// 2 has a second child, so 0 is a regular merge.
	g, _ := testgraph.Build([][]int{{3, 2}, {2}, {3}, {}})
	lb := NewLinearBek(NewBase(g))
	if lb.MotifCount() != 0 {
		t.Fatalf("MotifCount = %d, want 0", lb.MotifCount())
	}
	if answer := dispatch(t, lb, VerbClick, node(2)); !answer.IsEmpty() {
		t.Errorf("click = %+v, want empty", answer)
	}
}

func TestCollapsedFragment(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	c := NewCollapsed(NewBase(g))
	before := edges(c.Compiled())

	if answer := dispatch(t, c, VerbHover, node(1)); answer.Cursor != CursorHand {
		t.Errorf("hover on interior node: cursor %v, want hand", answer.Cursor)
	}

	answer := dispatch(t, c, VerbClick, node(1))
	if answer.Change == nil || !slices.Equal(answer.Change.Hidden, []int{1, 2}) {
		t.Fatalf("collapse change = %+v, want hidden [1 2]", answer.Change)
	}
	want := []linear.Edge{
		{Up: 0, Down: 3, Kind: linear.EdgeDotted},
		{Up: 3, Down: 4},
		{Up: 3, Down: 5},
		{Up: 4, Down: 6},
		{Up: 5, Down: 6},
	}
	if got := edges(c.Compiled()); !slices.Equal(got, want) {
		t.Fatalf("collapsed edges = %v, want %v", got, want)
	}

	selection := dispatch(t, c, VerbSelect, edge(0, 1, linear.EdgeDotted)).Selection
	if !slices.Equal(selection, []int{0, 3}) {
		t.Errorf("dotted selection = %v, want [0 3]", selection)
	}

	answer = dispatch(t, c, VerbClick, edge(0, 1, linear.EdgeDotted))
	if answer.Change == nil || !slices.Equal(answer.Change.Shown, []int{1, 2}) {
		t.Fatalf("expand change = %+v, want shown [1 2]", answer.Change)
	}
	if got := edges(c.Compiled()); !slices.Equal(got, before) {
		t.Errorf("expand did not restore edges:\n got %v\nwant %v", got, before)
	}

	if answer := dispatch(t, c, VerbClick, node(3)); !answer.IsEmpty() {
		t.Errorf("click on merge = %+v, want empty", answer)
	}
}

func TestCollapsedAll(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	c := NewCollapsed(NewBase(g))
	before := edges(c.Compiled())

	answer := dispatch(t, c, VerbCollapseAll, nil)
	if answer.Change == nil || !slices.Equal(answer.Change.Hidden, []int{1, 2, 4, 5}) {
		t.Fatalf("collapse-all change = %+v, want hidden [1 2 4 5]", answer.Change)
	}
	want := []linear.Edge{
		{Up: 0, Down: 3, Kind: linear.EdgeDotted},
		{Up: 3, Down: 6, Kind: linear.EdgeDotted},
	}
	if got := edges(c.Compiled()); !slices.Equal(got, want) {
		t.Fatalf("collapse-all edges = %v, want %v", got, want)
	}

	dispatch(t, c, VerbExpandAll, nil)
	if got := edges(c.Compiled()); !slices.Equal(got, before) {
		t.Errorf("expand-all did not restore edges:\n got %v\nwant %v", got, before)
	}
}

func TestCollapsedShowingKeepsScope(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	c, err := NewCollapsedShowing(context.Background(), NewBase(g), []int{0, 1, 3, 4, 6})
	if err != nil {
		t.Fatalf("NewCollapsedShowing: %v", err)
	}
	before := edges(c.Compiled())

	// Node 2 is the only node behind the dotted edge 1->3.
	if answer := dispatch(t, c, VerbClick, edge(1, 2, linear.EdgeDotted)); !answer.IsEmpty() {
		t.Errorf("expanding an out-of-scope edge = %+v, want empty", answer)
	}
	if answer := dispatch(t, c, VerbExpandAll, nil); !answer.IsEmpty() {
		t.Errorf("expand-all on the initial view = %+v, want empty", answer)
	}

	dispatch(t, c, VerbCollapseAll, nil)
	answer := dispatch(t, c, VerbExpandAll, nil)
	if answer.Change != nil && (slices.Contains(answer.Change.Shown, 2) || slices.Contains(answer.Change.Shown, 5)) {
		t.Errorf("expand-all showed out-of-scope nodes: %v", answer.Change.Shown)
	}
	if got := edges(c.Compiled()); !slices.Equal(got, before) {
		t.Errorf("expand-all did not restore the filtered view:\n got %v\nwant %v", got, before)
	}
	if n := c.Compiled().NodesCount(); n != 5 {
		t.Errorf("NodesCount = %d, want 5", n)
	}
}

func TestCollapsedDefersToLinearBek(t *testing.T) {
	g, _ := testgraph.Build(triangle())
	lb := NewLinearBek(NewBase(g))
	c := NewCollapsed(lb)

	// Node 1 is interior in the folded view, but the motif owns the click.
	answer := dispatch(t, c, VerbClick, node(1))
	if answer.Change == nil || len(answer.Change.Hidden) != 0 || len(answer.Change.Touched) == 0 {
		t.Fatalf("click change = %+v, want a touched-only change", answer.Change)
	}
	if lb.IsFolded(0) {
		t.Fatal("click should have unfolded the motif")
	}
	want := []linear.Edge{{Up: 0, Down: 2}, {Up: 0, Down: 1}, {Up: 1, Down: 2}, {Up: 2, Down: 3}}
	if got := edges(c.Compiled()); !slices.Equal(got, want) {
		t.Fatalf("edges = %v, want %v", got, want)
	}

	// Hiding 1 now yields a dotted edge next to the direct one.
	dispatch(t, c, VerbClick, node(1))
	if !c.Graph().HasDottedEdge(0, 2) {
		t.Fatal("collapsing 1 should add dotted edge 0->2")
	}

	// Collapse-all folds the motif, which turns 2 into an interior node of
	// the fragment from 0 to 3.
	dispatch(t, c, VerbCollapseAll, nil)
	if !lb.IsFolded(0) {
		t.Error("collapse-all should fold the motif")
	}
	want = []linear.Edge{{Up: 0, Down: 3, Kind: linear.EdgeDotted}}
	if got := edges(c.Compiled()); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestFilteredIgnoresActions(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	f, err := NewFiltered(context.Background(), NewBase(g), []int{0, 6})
	if err != nil {
		t.Fatalf("NewFiltered: %v", err)
	}
	compiled := f.Compiled()
	before := edges(compiled)
	if want := []linear.Edge{{Up: 0, Down: 6, Kind: linear.EdgeDotted}}; !slices.Equal(before, want) {
		t.Fatalf("filtered edges = %v, want %v", before, want)
	}

	actions := []Action{
		{Verb: VerbClick, Element: node(0)},
		{Verb: VerbClick, Element: edge(0, 1, linear.EdgeDotted)},
		{Verb: VerbHover, Element: node(1)},
		{Verb: VerbSelect, Element: node(0)},
		{Verb: VerbCollapseAll},
		{Verb: VerbExpandAll},
	}
	for _, a := range actions {
		answer, err := Dispatch(context.Background(), f, a)
		if err != nil || !answer.IsEmpty() {
			t.Errorf("Dispatch(%v) = %+v, %v, want empty", a.Verb, answer, err)
		}
	}
	if f.Compiled() != compiled || !slices.Equal(edges(f.Compiled()), before) {
		t.Error("actions changed the filtered graph")
	}
}

func TestCollapsedCanceled(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	c := NewCollapsed(NewBase(g))
	before := edges(c.Compiled())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Dispatch(ctx, c, Action{Verb: VerbClick, Element: node(1)}); err == nil {
		t.Fatal("Dispatch on canceled ctx should fail")
	}
	if !slices.Equal(edges(c.Compiled()), before) {
		t.Error("canceled action changed the graph")
	}
}

func TestParseVerb(t *testing.T) {
	for _, v := range []Verb{VerbClick, VerbHover, VerbSelect, VerbCollapseAll, VerbExpandAll} {
		got, ok := ParseVerb(v.String())
		if !ok || got != v {
			t.Errorf("ParseVerb(%q) = %v, %v", v.String(), got, ok)
		}
	}
	if _, ok := ParseVerb("drag"); ok {
		t.Error("ParseVerb(drag) should fail")
	}
}
