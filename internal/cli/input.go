package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/commitgraph/pkg/cache"
	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/graph"
	"github.com/matzehuels/commitgraph/pkg/source"
	"github.com/matzehuels/commitgraph/pkg/source/gitrepo"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

// =============================================================================
// Flags
// =============================================================================

// sourceOpts selects the commits to read.
type sourceOpts struct {
	refs  []string // refs to start from in a repository
	limit int      // maximum commits to load (0: config or source default)
	topo  bool     // reorder JSON logs children before parents
}

func (o *sourceOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.refs, "refs", nil, "refs to read from a repository (default: all branches and HEAD)")
	cmd.Flags().IntVarP(&o.limit, "max-commits", "n", 0, "maximum number of commits to load")
	cmd.Flags().BoolVar(&o.topo, "topo", false, "sort a JSON log children before parents")
	_ = cmd.RegisterFlagCompletionFunc("refs", completeRefs)
}

// viewOpts selects how the commits are shown.
type viewOpts struct {
	sort     string   // row order (empty: config)
	branches []string // show only commits reachable from these heads
	filter   string   // show only commits matching this regexp, read-only
	noCache  bool     // do not read or write cached orders
}

func (o *viewOpts) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.sort, "sort", "", "row order: linear-bek, bek, default (default from config)")
	cmd.Flags().StringSliceVarP(&o.branches, "branch", "b", nil, "show only commits reachable from these heads (commit id or prefix)")
	cmd.Flags().StringVar(&o.filter, "filter", "", "show only commits whose id, author or subject match this regexp")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "do not use the order cache")
	_ = cmd.RegisterFlagCompletionFunc("sort", completeSort)
}

// inputArg returns the input argument, defaulting to the current directory.
func inputArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// =============================================================================
// Loading
// =============================================================================

// loadLog reads the history named by input: a git repository directory, a
// JSON log file, or "-" for a JSON log on stdin.
func (c *CLI) loadLog(ctx context.Context, input string, stdin io.Reader, opts sourceOpts) (graph.Log, error) {
	if input != "-" {
		info, err := os.Stat(input)
		if err != nil {
			return graph.Log{}, err
		}
		if info.IsDir() {
			return c.readRepo(ctx, input, opts)
		}
	}

	var (
		l   graph.Log
		err error
	)
	if input == "-" {
		l, err = graph.ReadLog(stdin)
	} else {
		l, err = graph.ReadLogFile(input)
	}
	if err != nil {
		return graph.Log{}, fmt.Errorf("read log: %w", err)
	}
	if err := l.Validate(); err != nil {
		return graph.Log{}, err
	}
	if opts.topo {
		if l.Commits, err = source.TopoSort(ctx, l.Commits); err != nil {
			return graph.Log{}, err
		}
	}
	if limit := c.commitLimit(opts); limit > 0 && len(l.Commits) > limit {
		l.Commits = l.Commits[:limit]
	}
	c.Logger.Debug("read log", "input", input, "commits", len(l.Commits), "heads", len(l.Heads))
	return l, nil
}

func (c *CLI) readRepo(ctx context.Context, path string, opts sourceOpts) (graph.Log, error) {
	repo, err := gitrepo.Open(path)
	if err != nil {
		return graph.Log{}, err
	}

	p := startPhase(c.Logger, "read")
	s := startSpinner(ctx, c.status, "Reading "+path)
	l, err := repo.Log(ctx, source.Options{
		Limit:    c.commitLimit(opts),
		Refs:     opts.refs,
		Progress: s.Set,
	})
	s.Stop()
	if err != nil {
		return graph.Log{}, err
	}
	p.done("commits", len(l.Commits))
	return l, nil
}

func (c *CLI) commitLimit(opts sourceOpts) int {
	if opts.limit > 0 {
		return opts.limit
	}
	return c.config().Graph.MaxCommits
}

// =============================================================================
// Views
// =============================================================================

// view is a visible graph together with the log it shows.
type view struct {
	log     *graph.Log
	graph   *visible.Graph[string]
	commits map[string]*graph.Commit
	cache   cache.Cache
}

// Close releases the order cache.
func (v *view) Close() error {
	if v.cache == nil {
		return nil
	}
	return v.cache.Close()
}

// page returns rows [offset, offset+limit). A limit of zero returns every
// row from offset on; an offset at the end returns no rows.
func (v *view) page(offset, limit int) (graph.Page, error) {
	if err := errors.ValidatePage(offset, limit, 0); err != nil {
		return graph.Page{}, err
	}
	total := v.graph.RowCount()
	page := graph.Page{Offset: offset, Total: total, Rows: []graph.Row{}}
	if offset > total {
		return graph.Page{}, errors.New(errors.ErrCodeOutOfRange, "offset %d beyond %d rows", offset, total)
	}
	if offset == total {
		return page, nil
	}
	if limit == 0 {
		limit = total - offset
	}
	rows, err := v.graph.Rows(offset, limit)
	if err != nil {
		return graph.Page{}, err
	}
	page.Rows = graph.FromRows(rows, v.commits)
	return page, nil
}

// buildView builds the visible graph of l.
func (c *CLI) buildView(ctx context.Context, l graph.Log, opts viewOpts) (*view, error) {
	cfg := c.config()
	v := &view{log: &l, commits: l.Index()}

	commits := l.PermanentCommits()
	bopts := visible.BuildOptions{
		MissingTimestamp: cfg.Graph.MissingTimestamp,
		Logger:           c.Logger,
	}
	if !opts.noCache {
		cc, err := newCache(ctx, cfg.Cache)
		if err != nil {
			c.Logger.Warn("order cache unavailable", "error", err)
		} else {
			v.cache = cc
			bopts.Store = cache.NewOrderStore(cc, cfg.Cache.TTL.Duration)
			bopts.StoreKey = keyer(cfg.Cache).OrderKey(cache.Fingerprint(commits, cfg.Graph.MissingTimestamp))
		}
	}

	p := startPhase(c.Logger, "build")
	perm, err := visible.BuildPermanent(ctx, commits, l.Heads, bopts)
	if err != nil {
		v.Close()
		return nil, err
	}

	vopts := visible.Options[string]{
		Sort:   opts.sort,
		Logger: c.Logger,
	}
	if vopts.Sort == "" {
		vopts.Sort = cfg.Graph.Sort
	}
	if len(opts.branches) > 0 {
		if vopts.Heads, err = resolveHeads(&l, opts.branches); err != nil {
			v.Close()
			return nil, err
		}
	}
	if opts.filter != "" {
		re, err := regexp.Compile(opts.filter)
		if err != nil {
			v.Close()
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid filter")
		}
		vopts.Matched = l.Match(re)
	}

	if v.graph, err = visible.New(ctx, perm, vopts); err != nil {
		v.Close()
		return nil, err
	}
	p.done("commits", len(l.Commits), "rows", v.graph.RowCount(), "sort", v.graph.Sort())
	return v, nil
}

// resolveHeads maps each name to the commit it identifies: an exact id, or
// a prefix shared by exactly one commit.
func resolveHeads(l *graph.Log, names []string) ([]string, error) {
	heads := make([]string, 0, len(names))
	idx := l.Index()
	for _, name := range names {
		if _, ok := idx[name]; ok {
			heads = append(heads, name)
			continue
		}
		var match string
		for _, cm := range l.Commits {
			if !strings.HasPrefix(cm.ID, name) {
				continue
			}
			if match != "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "branch %q is ambiguous", name)
			}
			match = cm.ID
		}
		if match == "" {
			return nil, errors.New(errors.ErrCodeUnknownCommit, "branch %q matches no commit", name)
		}
		heads = append(heads, match)
	}
	return heads, nil
}
