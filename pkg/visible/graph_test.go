package visible

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/matzehuels/commitgraph/pkg/core/controller"
	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/core/print"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

func commit(id string, ts int64, parents ...string) permanent.Commit[string] {
	return permanent.Commit[string]{ID: id, Parents: parents, Timestamp: ts}
}

// oneMerge is a chain c0..c6 where c3 merges c4 and c5 back from c6.
func oneMerge() []permanent.Commit[string] {
	return []permanent.Commit[string]{
		commit("c0", 7000, "c1"),
		commit("c1", 6000, "c2"),
		commit("c2", 5000, "c3"),
		commit("c3", 4000, "c4", "c5"),
		commit("c4", 3000, "c6"),
		commit("c5", 2000, "c6"),
		commit("c6", 1000),
	}
}

// twoBranches has heads c0 and c1 sharing history from c2.
func twoBranches() []permanent.Commit[string] {
	return []permanent.Commit[string]{
		commit("c0", 4000, "c2"),
		commit("c1", 3000, "c2"),
		commit("c2", 2000, "c3"),
		commit("c3", 1000),
	}
}

func mustBuildPermanent(t *testing.T, commits []permanent.Commit[string], heads ...string) *Permanent[string] {
	t.Helper()
	p, err := BuildPermanent(context.Background(), commits, heads, BuildOptions{})
	if err != nil {
		t.Fatalf("BuildPermanent: %v", err)
	}
	return p
}

func newGraph(t *testing.T, p *Permanent[string], opts Options[string]) *Graph[string] {
	t.Helper()
	g, err := New(context.Background(), p, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func allRows(t *testing.T, g *Graph[string]) []RowInfo[string] {
	t.Helper()
	rows, err := g.Rows(0, g.RowCount())
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	return rows
}

func perform(t *testing.T, g *Graph[string], verb controller.Verb, el *linear.Element) controller.Answer {
	t.Helper()
	ans, err := g.PerformAction(context.Background(), controller.Action{Verb: verb, Element: el})
	if err != nil {
		t.Fatalf("PerformAction(%v): %v", verb, err)
	}
	return ans
}

func nodeElement(row int) *linear.Element {
	el := linear.NodeElement(row)
	return &el
}

func dottedEdges(g *Graph[string]) []linear.Edge {
	var out []linear.Edge
	g.Inspect(func(c linear.Graph) {
		for i := 0; i < c.NodesCount(); i++ {
			for _, e := range c.AdjacentEdges(i, linear.FilterDown) {
				if e.Kind == linear.EdgeDotted {
					out = append(out, e)
				}
			}
		}
	})
	return out
}

func TestNewSortModes(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge(), "c0")
	for _, mode := range []string{"", SortDefault, SortBek, SortLinearBek} {
		t.Run(mode, func(t *testing.T) {
			g := newGraph(t, p, Options[string]{Sort: mode})
			if g.RowCount() != 7 {
				t.Fatalf("RowCount() = %d, want 7", g.RowCount())
			}
			var ids []string
			for _, r := range allRows(t, g) {
				ids = append(ids, r.CommitID)
			}
			slices.Sort(ids)
			want := []string{"c0", "c1", "c2", "c3", "c4", "c5", "c6"}
			if !slices.Equal(ids, want) {
				t.Errorf("rows show %v, want %v", ids, want)
			}
		})
	}
}

func TestNewRejectsUnknownSort(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	_, err := New(context.Background(), p, Options[string]{Sort: "random"})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New(sort=random) error = %v, want INVALID_CONFIG", err)
	}
}

func TestRowsIdempotent(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge(), "c0")
	for _, mode := range []string{SortDefault, SortBek, SortLinearBek} {
		t.Run(mode, func(t *testing.T) {
			g := newGraph(t, p, Options[string]{Sort: mode})
			first := allRows(t, g)
			second := allRows(t, g)
			if !reflect.DeepEqual(first, second) {
				t.Errorf("second compile differs:\n got %v\nwant %v", second, first)
			}
		})
	}
}

func TestCollapseExpandRestoresRows(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge(), "c0")
	g := newGraph(t, p, Options[string]{})
	before := allRows(t, g)

	ans := perform(t, g, controller.VerbClick, nodeElement(4))
	if ans.Change == nil || !slices.Equal(ans.Change.Hidden, []int{4}) {
		t.Fatalf("collapse change = %+v, want hidden [4]", ans.Change)
	}
	if g.RowCount() != 6 {
		t.Fatalf("RowCount() after collapse = %d, want 6", g.RowCount())
	}
	dotted := dottedEdges(g)
	want := []linear.Edge{{Up: 3, Down: 5, Kind: linear.EdgeDotted}}
	if !slices.Equal(dotted, want) {
		t.Fatalf("dotted edges = %v, want %v", dotted, want)
	}

	el := linear.EdgeElement(dotted[0])
	ans = perform(t, g, controller.VerbClick, &el)
	if ans.Change == nil || !slices.Equal(ans.Change.Shown, []int{4}) {
		t.Fatalf("expand change = %+v, want shown [4]", ans.Change)
	}
	if after := allRows(t, g); !reflect.DeepEqual(after, before) {
		t.Errorf("rows after expand differ:\n got %v\nwant %v", after, before)
	}
}

func TestMatchedFilter(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge(), "c0")
	g := newGraph(t, p, Options[string]{Matched: []string{"c0", "c6", "unknown"}})

	if !g.ReadOnly() {
		t.Error("ReadOnly() = false, want true")
	}
	if g.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", g.RowCount())
	}
	var edges []linear.Edge
	g.Inspect(func(c linear.Graph) {
		for i := 0; i < c.NodesCount(); i++ {
			edges = append(edges, c.AdjacentEdges(i, linear.FilterDown)...)
		}
	})
	want := []linear.Edge{{Up: 0, Down: 1, Kind: linear.EdgeDotted}}
	if !slices.Equal(edges, want) {
		t.Fatalf("edges = %v, want %v", edges, want)
	}

	before := allRows(t, g)
	dotted := linear.EdgeElement(want[0])
	for _, a := range []controller.Action{
		{Verb: controller.VerbClick, Element: nodeElement(0)},
		{Verb: controller.VerbClick, Element: &dotted},
		{Verb: controller.VerbCollapseAll},
		{Verb: controller.VerbExpandAll},
	} {
		ans, err := g.PerformAction(context.Background(), a)
		if err != nil {
			t.Fatalf("PerformAction(%v): %v", a.Verb, err)
		}
		if !ans.IsEmpty() {
			t.Errorf("PerformAction(%v) = %+v, want empty", a.Verb, ans)
		}
	}
	if after := allRows(t, g); !reflect.DeepEqual(after, before) {
		t.Error("actions changed a filtered view")
	}
}

func TestHeadsFilter(t *testing.T) {
	p := mustBuildPermanent(t, twoBranches(), "c0", "c1")
	g := newGraph(t, p, Options[string]{Heads: []string{"c1"}})

	var got []string
	for _, r := range allRows(t, g) {
		got = append(got, r.CommitID)
	}
	if want := []string{"c1", "c2", "c3"}; !slices.Equal(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if _, ok := g.RowOf("c0"); ok {
		t.Error("RowOf(c0) found a row for a filtered-out commit")
	}
	if row, ok := g.RowOf("c2"); !ok || row != 1 {
		t.Errorf("RowOf(c2) = %d, %v, want 1, true", row, ok)
	}
}

func TestHeadsFilterSurvivesExpandAll(t *testing.T) {
	p := mustBuildPermanent(t, twoBranches(), "c0", "c1")
	g := newGraph(t, p, Options[string]{Heads: []string{"c1"}})

	ids := func() []string {
		var out []string
		for _, r := range allRows(t, g) {
			out = append(out, r.CommitID)
		}
		return out
	}

	perform(t, g, controller.VerbCollapseAll, nil)
	if got := ids(); slices.Contains(got, "c0") || slices.Contains(got, "c2") {
		t.Errorf("rows after collapse-all = %v", got)
	}

	ans := perform(t, g, controller.VerbExpandAll, nil)
	if got, want := ids(), []string{"c1", "c2", "c3"}; !slices.Equal(got, want) {
		t.Errorf("rows after expand-all = %v, want %v", got, want)
	}
	if c0, _ := p.Commits.NodeID("c0"); ans.Change != nil && slices.Contains(ans.Change.Shown, c0) {
		t.Errorf("expand-all reported c0 as shown: %v", ans.Change.Shown)
	}
	if _, ok := g.RowOf("c0"); ok {
		t.Error("RowOf(c0) found a row after expand-all")
	}
}

func TestRowOutOfRange(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	g := newGraph(t, p, Options[string]{})

	tests := []struct {
		name string
		call func() error
	}{
		{"commit id past end", func() error { _, err := g.RowCommitID(7); return err }},
		{"commit id negative", func() error { _, err := g.RowCommitID(-1); return err }},
		{"print elements", func() error { _, err := g.RowPrintElements(7); return err }},
		{"row info", func() error { _, err := g.RowInfo(100); return err }},
		{"rows", func() error { _, err := g.Rows(7, 10); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, errors.ErrCodeOutOfRange) {
				t.Errorf("error = %v, want OUT_OF_RANGE", err)
			}
		})
	}
}

func TestRowsClipped(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	g := newGraph(t, p, Options[string]{})
	rows, err := g.Rows(5, 10)
	if err != nil {
		t.Fatalf("Rows(5, 10): %v", err)
	}
	if len(rows) != 2 || rows[0].CommitID != "c5" || rows[1].Row != 6 {
		t.Errorf("Rows(5, 10) = %+v, want rows 5 and 6", rows)
	}
	if rows[1].Timestamp != 1000 {
		t.Errorf("row 6 timestamp = %d, want 1000", rows[1].Timestamp)
	}
}

func TestSelection(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	g := newGraph(t, p, Options[string]{})

	ans := perform(t, g, controller.VerbSelect, nodeElement(3))
	if !slices.Equal(ans.Selection, []int{3}) {
		t.Fatalf("selection = %v, want [3]", ans.Selection)
	}
	if !nodeSelected(t, g, 3) {
		t.Error("row 3 node not selected")
	}
	if nodeSelected(t, g, 2) {
		t.Error("row 2 node selected")
	}

	g.ClearSelection()
	if nodeSelected(t, g, 3) {
		t.Error("row 3 node still selected after ClearSelection")
	}
}

func nodeSelected(t *testing.T, g *Graph[string], row int) bool {
	t.Helper()
	elems, err := g.RowPrintElements(row)
	if err != nil {
		t.Fatalf("RowPrintElements(%d): %v", row, err)
	}
	for _, pe := range elems {
		if pe.Kind == print.KindNode {
			return pe.Selected
		}
	}
	t.Fatalf("row %d has no node element", row)
	return false
}

func TestColors(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	g := newGraph(t, p, Options[string]{
		Colors: func(head string, lane int) int {
			if head == "c0" {
				return 10
			}
			return 20 + lane
		},
	})

	tests := []struct {
		row  int
		want int
	}{
		{0, 10},
		{4, 10},
		{5, 21},
	}
	for _, tt := range tests {
		elems, err := g.RowPrintElements(tt.row)
		if err != nil {
			t.Fatalf("RowPrintElements(%d): %v", tt.row, err)
		}
		for _, pe := range elems {
			if pe.Kind == print.KindNode && pe.Color != tt.want {
				t.Errorf("row %d node color = %d, want %d", tt.row, pe.Color, tt.want)
			}
		}
	}
}

func TestChildren(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	g := newGraph(t, p, Options[string]{})

	got, err := g.Children("c6")
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	slices.Sort(got)
	if want := []string{"c4", "c5"}; !slices.Equal(got, want) {
		t.Errorf("Children(c6) = %v, want %v", got, want)
	}
	if _, err := g.Children("nope"); !errors.Is(err, errors.ErrCodeUnknownCommit) {
		t.Errorf("Children(nope) error = %v, want UNKNOWN_COMMIT", err)
	}
}

func TestContainingBranches(t *testing.T) {
	p := mustBuildPermanent(t, twoBranches(), "c0", "c1", "missing")
	g := newGraph(t, p, Options[string]{})
	ctx := context.Background()

	tests := []struct {
		commit string
		want   []string
	}{
		{"c0", []string{"c0"}},
		{"c1", []string{"c1"}},
		{"c2", []string{"c0", "c1"}},
		{"c3", []string{"c0", "c1"}},
	}
	for _, tt := range tests {
		got, err := g.ContainingBranches(ctx, tt.commit)
		if err != nil {
			t.Fatalf("ContainingBranches(%s): %v", tt.commit, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("ContainingBranches(%s) = %v, want %v", tt.commit, got, tt.want)
		}
	}
	if _, err := g.ContainingBranches(ctx, "zz"); !errors.Is(err, errors.ErrCodeUnknownCommit) {
		t.Errorf("ContainingBranches(zz) error = %v, want UNKNOWN_COMMIT", err)
	}
}

func TestContainedInBranchCondition(t *testing.T) {
	p := mustBuildPermanent(t, twoBranches(), "c0", "c1")
	g := newGraph(t, p, Options[string]{})

	cond, err := g.ContainedInBranchCondition(context.Background(), []string{"c1"})
	if err != nil {
		t.Fatalf("ContainedInBranchCondition: %v", err)
	}
	for c, want := range map[string]bool{"c0": false, "c1": true, "c2": true, "c3": true, "zz": false} {
		if got := cond.Contains(c); got != want {
			t.Errorf("Contains(%s) = %v, want %v", c, got, want)
		}
	}
}

func TestPerformActionCanceled(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	g := newGraph(t, p, Options[string]{})
	before := allRows(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.PerformAction(ctx, controller.Action{Verb: controller.VerbCollapseAll})
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Fatalf("PerformAction error = %v, want CANCELED", err)
	}
	if after := allRows(t, g); !reflect.DeepEqual(after, before) {
		t.Error("canceled action changed the view")
	}
}

func TestConcurrentUse(t *testing.T) {
	p := mustBuildPermanent(t, oneMerge())
	g := newGraph(t, p, Options[string]{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			verb := controller.VerbCollapseAll
			if i%2 == 0 {
				verb = controller.VerbExpandAll
			}
			if _, err := g.PerformAction(context.Background(), controller.Action{Verb: verb}); err != nil {
				t.Errorf("PerformAction: %v", err)
			}
			if _, err := g.Rows(0, g.RowCount()); err != nil {
				// The row count may shrink between the two calls.
				if !errors.Is(err, errors.ErrCodeOutOfRange) {
					t.Errorf("Rows: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	perform(t, g, controller.VerbExpandAll, nil)
	if g.RowCount() != 7 {
		t.Errorf("RowCount() after expand-all = %d, want 7", g.RowCount())
	}
}
