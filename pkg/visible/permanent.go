package visible

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/commitgraph/pkg/core/bek"
	"github.com/matzehuels/commitgraph/pkg/core/layout"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/core/reachable"
	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/observability"
)

// BuildOptions configures [BuildPermanent].
type BuildOptions struct {
	// MissingTimestamp replaces timestamps the VCS did not report.
	MissingTimestamp int64
	// Store, if set, caches the Bek order under StoreKey.
	Store    bek.Store
	StoreKey string
	Logger   *log.Logger
}

// Permanent is the immutable state shared by all visible graphs of one
// log refresh.
type Permanent[C comparable] struct {
	Graph     *permanent.Graph
	Commits   *permanent.CommitsInfo[C]
	Layout    *layout.Layout
	Reachable *reachable.Nodes
	// Branches holds the node ids of the branch heads, in input order.
	Branches []int

	memo   *bek.Memo
	logger *log.Logger
}

// BuildPermanent builds the permanent graph of commits and the structures
// derived from it. Heads that are not among the commits are skipped.
//
// The layout and the reachability index are built concurrently once the
// graph exists. On any failure nothing is returned.
func BuildPermanent[C comparable](ctx context.Context, commits []permanent.Commit[C], heads []C, opts BuildOptions) (*Permanent[C], error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	hooks := observability.Graph()
	hooks.OnBuildStart(ctx, len(commits))
	start := time.Now()

	p, err := buildPermanent(ctx, commits, heads, opts, logger)

	nodes := 0
	if p != nil {
		nodes = p.Graph.NodesCount()
	}
	hooks.OnBuildComplete(ctx, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	logger.Debug("built permanent graph",
		"nodes", nodes,
		"edges", p.Graph.EdgeCount(),
		"lanes", p.Layout.LaneCount(),
		"branches", len(p.Branches),
		"missing_parents", len(p.Commits.MissingParents()),
		"duration", time.Since(start).Round(time.Millisecond))
	return p, nil
}

func buildPermanent[C comparable](ctx context.Context, commits []permanent.Commit[C], heads []C, opts BuildOptions, logger *log.Logger) (*Permanent[C], error) {
	g, info, err := permanent.Build(ctx, commits, permanent.Options{MissingTimestamp: opts.MissingTimestamp})
	if err != nil {
		return nil, err
	}

	p := &Permanent[C]{Graph: g, Commits: info, logger: logger}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		l, err := layout.Build(egCtx, g)
		if err != nil {
			return err
		}
		p.Layout = l
		return nil
	})
	eg.Go(func() error {
		p.Reachable = reachable.New(g)
		p.Branches = info.NodeIDs(heads)
		if skipped := len(heads) - len(p.Branches); skipped > 0 {
			logger.Debug("skipped unknown branch heads", "count", skipped)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	p.memo = bek.NewMemo(g, p.Layout, info)
	if opts.Store != nil && opts.StoreKey != "" {
		p.memo.WithStore(opts.Store, opts.StoreKey).OnStoreError(func(op string, err error) {
			logger.Warn("bek order cache", "op", op, "key", opts.StoreKey, "error", err)
		})
	}
	return p, nil
}

// BekOrder returns the Bek order of the graph, sorting it on first use.
// Concurrent callers share one sort; a canceled sort publishes nothing.
func (p *Permanent[C]) BekOrder(ctx context.Context) (*bek.Order, error) {
	if o, ok := p.memo.Cached(); ok {
		return o, nil
	}
	hooks := observability.Graph()
	hooks.OnSortStart(ctx, SortBek, p.Graph.NodesCount())
	start := time.Now()
	o, err := p.memo.Get(ctx)
	hooks.OnSortComplete(ctx, SortBek, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("bek order ready", "nodes", o.Len(), "duration", time.Since(start).Round(time.Millisecond))
	return o, nil
}

// NodeID resolves commit c, failing with UNKNOWN_COMMIT.
func (p *Permanent[C]) NodeID(c C) (int, error) {
	id, ok := p.Commits.NodeID(c)
	if !ok {
		return 0, errors.New(errors.ErrCodeUnknownCommit, "commit %v is not in the graph", c)
	}
	return id, nil
}
