package visible

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/commitgraph/pkg/core/controller"
	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/core/print"
	"github.com/matzehuels/commitgraph/pkg/core/reachable"
	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/observability"
)

// Sort modes.
const (
	SortDefault   = "default"
	SortBek       = "bek"
	SortLinearBek = "linear-bek"
)

// Options configures a visible graph.
type Options[C comparable] struct {
	// Sort selects the row order. Empty means SortDefault.
	Sort string
	// Heads restricts the view to commits reachable from these heads.
	// Nil shows every commit.
	Heads []C
	// Matched, if non-nil, makes a read-only view of exactly these commits.
	// It takes precedence over Heads.
	Matched []C
	// Colors picks the color of a lane from the commit that opened it.
	// Nil colors each lane by its index.
	Colors func(head C, lane int) int
	Logger *log.Logger
}

// RowInfo is the content of one row.
type RowInfo[C comparable] struct {
	Row       int
	CommitID  C
	Timestamp int64
	Elements  []print.PrintElement
}

// Graph is one interactive view over a [Permanent]. It is safe for
// concurrent use; actions are serialized.
type Graph[C comparable] struct {
	mu sync.Mutex

	p       *Permanent[C]
	sort    string
	top     controller.Layer
	printer *print.Manager
	logger  *log.Logger

	selectedIDs []int
}

// New builds the controller cascade described by opts over p.
func New[C comparable](ctx context.Context, p *Permanent[C], opts Options[C]) (*Graph[C], error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	mode := opts.Sort
	if mode == "" {
		mode = SortDefault
	}
	if err := errors.ValidateSortMode(mode); err != nil {
		return nil, err
	}

	base := controller.NewBase(p.Graph)
	var mid controller.Layer = base
	if mode != SortDefault {
		order, err := p.BekOrder(ctx)
		if err != nil {
			return nil, err
		}
		mid = controller.NewBek(base, order)
		if mode == SortLinearBek {
			mid = controller.NewLinearBek(mid)
		}
	}

	var top controller.Layer
	switch {
	case opts.Matched != nil:
		f, err := controller.NewFiltered(ctx, mid, p.Commits.NodeIDs(opts.Matched))
		if err != nil {
			return nil, err
		}
		top = f
	case opts.Heads != nil:
		cond, err := p.Reachable.ContainedInBranchCondition(ctx, p.Commits.NodeIDs(opts.Heads))
		if err != nil {
			return nil, err
		}
		d := mid.Compiled()
		shown := make([]int, 0, cond.Count())
		for i := 0; i < d.NodesCount(); i++ {
			if cond.Contains(d.NodeID(i)) {
				shown = append(shown, i)
			}
		}
		c, err := controller.NewCollapsedShowing(ctx, mid, shown)
		if err != nil {
			return nil, err
		}
		top = c
	default:
		top = controller.NewCollapsed(mid)
	}

	var colors print.ColorPolicy
	if opts.Colors != nil {
		colors = func(head, lane int) int {
			if head == linear.NoNode {
				return lane
			}
			return opts.Colors(p.Commits.CommitID(head), lane)
		}
	}

	logger.Debug("built visible graph", "sort", mode, "rows", top.Compiled().NodesCount(),
		"filtered", opts.Matched != nil, "branch_filter", opts.Heads != nil)

	return &Graph[C]{
		p:       p,
		sort:    mode,
		top:     top,
		printer: print.NewManager(top.Compiled(), p.Layout, colors),
		logger:  logger,
	}, nil
}

// Permanent returns the shared state the view was built from.
func (g *Graph[C]) Permanent() *Permanent[C] { return g.p }

// Sort returns the sort mode of the view.
func (g *Graph[C]) Sort() string { return g.sort }

// ReadOnly reports whether the view ignores actions.
func (g *Graph[C]) ReadOnly() bool {
	_, ok := g.top.(*controller.Filtered)
	return ok
}

// RowCount returns the number of visible rows.
func (g *Graph[C]) RowCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.top.Compiled().NodesCount()
}

// RowCommitID returns the commit shown in row.
func (g *Graph[C]) RowCommitID(row int) (C, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var zero C
	c := g.top.Compiled()
	if err := errors.ValidateRow(row, c.NodesCount()); err != nil {
		return zero, err
	}
	return g.p.Commits.CommitID(c.NodeID(row)), nil
}

// RowPrintElements returns the print elements of row.
func (g *Graph[C]) RowPrintElements(row int) ([]print.PrintElement, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.printer.Row(row)
}

// RowInfo returns the commit and print elements of row.
func (g *Graph[C]) RowInfo(row int) (RowInfo[C], error) {
	rows, err := g.Rows(row, 1)
	if err != nil {
		return RowInfo[C]{}, err
	}
	return rows[0], nil
}

// Rows returns rows [offset, offset+limit), clipped to the graph. offset
// must address a row.
func (g *Graph[C]) Rows(offset, limit int) ([]RowInfo[C], error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	elems, err := g.printer.Rows(offset, limit)
	if err != nil {
		return nil, err
	}
	c := g.top.Compiled()
	out := make([]RowInfo[C], len(elems))
	for i, pe := range elems {
		id := c.NodeID(offset + i)
		out[i] = RowInfo[C]{
			Row:       offset + i,
			CommitID:  g.p.Commits.CommitID(id),
			Timestamp: g.p.Commits.Timestamp(id),
			Elements:  pe,
		}
	}
	return out, nil
}

// PerformAction dispatches a to the top of the cascade. The action's
// element is addressed in rows. Actions on elements that do not exist, or
// that no layer handles, return the empty answer.
//
// A failed action leaves the view unchanged.
func (g *Graph[C]) PerformAction(ctx context.Context, a controller.Action) (controller.Answer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	ans, err := controller.Dispatch(ctx, g.top, a)
	observability.Graph().OnAction(ctx, a.Verb.String(), !ans.Change.IsEmpty(), time.Since(start))
	if err != nil {
		return controller.Answer{}, err
	}

	changed := !ans.Change.IsEmpty()
	if changed {
		g.printer.Invalidate()
	}
	switch {
	case ans.Selection != nil:
		g.selectedIDs = ans.Selection
		g.printer.SetSelection(a.Element, ans.Selection)
	case changed:
		// Indexes moved; keep the selection by id only.
		g.printer.SetSelection(nil, g.selectedIDs)
	}
	if changed {
		g.logger.Debug("graph changed", "verb", a.Verb,
			"shown", len(ans.Change.Shown), "hidden", len(ans.Change.Hidden),
			"rows", g.top.Compiled().NodesCount())
	}
	return ans, nil
}

// ClearSelection drops the current selection.
func (g *Graph[C]) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selectedIDs = nil
	g.printer.SetSelection(nil, nil)
}

// Inspect calls fn with the compiled graph of the view. Rows of the view
// are the compiled node indexes. fn must not retain the graph.
func (g *Graph[C]) Inspect(fn func(compiled linear.Graph)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.top.Compiled())
}

// RowOf returns the row showing commit c, or false if it is hidden.
func (g *Graph[C]) RowOf(c C) (int, bool) {
	id, ok := g.p.Commits.NodeID(c)
	if !ok {
		return 0, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	row := g.top.Compiled().NodeIndex(id)
	return row, row != linear.NoNode
}

// Children returns the loaded children of commit c in the permanent graph.
func (g *Graph[C]) Children(c C) ([]C, error) {
	id, err := g.p.NodeID(c)
	if err != nil {
		return nil, err
	}
	return g.p.Commits.CommitIDs(g.p.Graph.UpNodes(id)), nil
}

// ContainingBranches returns the branch heads from which c is reachable,
// in the order the heads were given to [BuildPermanent].
func (g *Graph[C]) ContainingBranches(ctx context.Context, c C) ([]C, error) {
	id, err := g.p.NodeID(c)
	if err != nil {
		return nil, err
	}
	heads, err := g.p.Reachable.ContainingBranches(ctx, id, g.p.Branches)
	if err != nil {
		return nil, err
	}
	return g.p.Commits.CommitIDs(heads), nil
}

// Condition reports whether commits are reachable from a set of heads.
type Condition[C comparable] struct {
	p   *Permanent[C]
	set reachable.Condition
}

// Contains reports whether c is reachable from the heads. Unknown commits
// are not.
func (c Condition[C]) Contains(commit C) bool {
	id, ok := c.p.Commits.NodeID(commit)
	return ok && c.set.Contains(id)
}

// ContainedInBranchCondition computes the commits reachable from heads.
// Unknown heads are skipped.
func (g *Graph[C]) ContainedInBranchCondition(ctx context.Context, heads []C) (Condition[C], error) {
	cond, err := g.p.Reachable.ContainedInBranchCondition(ctx, g.p.Commits.NodeIDs(heads))
	if err != nil {
		return Condition[C]{}, err
	}
	return Condition[C]{p: g.p, set: cond}, nil
}
