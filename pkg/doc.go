// Package pkg provides the core libraries for commitgraph, a commit-graph
// visualization engine.
//
// # Overview
//
// commitgraph turns a commit log into rows of lanes the way "git log --graph"
// does, except that the rows stay interactive: fragments of the history can
// be collapsed behind dotted edges, expanded again, filtered to matching
// commits or reordered with the Bek sort. The pkg directory is organized into
// these areas:
//
//  1. [core] - Graph algorithms (layout, Bek order, controllers, printing)
//  2. [visible] - Interactive views over one permanent graph
//  3. [graph] - Serialization types for commit logs, rows and actions
//  4. [source] - Commit log readers (JSON and git repositories)
//  5. [render] - Terminal lanes and Graphviz output
//  6. [server] - HTTP API over [session] storage
//
// # Architecture
//
// The typical data flow:
//
//	git repository / JSON log
//	         ↓
//	    [source] (read, topologically sort)
//	         ↓
//	    [visible.BuildPermanent] (graph + layout + reachability)
//	         ↓
//	    [visible.New] (sort, branch filter, collapsed fragments)
//	         ↓
//	    [render/term], [render/nodelink], [server]
//
// # Quick Start
//
//	l, _ := graph.ReadLogFile("log.json")
//	p, _ := visible.BuildPermanent(ctx, l.PermanentCommits(), l.Heads, visible.BuildOptions{})
//	g, _ := visible.New(ctx, p, visible.Options[string]{Sort: visible.SortLinearBek})
//
//	rows, _ := g.Rows(0, 50)
//	term.New(term.Options{}).Render(os.Stdout, graph.FromRows(rows, l.Index()))
//
// # Main Packages
//
// [core/permanent] - Immutable parent/child adjacency over dense node ids.
//
// [core/layout] - Lane assignment for every commit of the permanent graph.
//
// [core/bek] - The Bek order: branches kept contiguous, memoized per graph.
//
// [core/controller] - The layered controller cascade (base, collapsed
// fragments, linear Bek) that maps visible rows to permanent nodes and
// handles click, hover and select actions.
//
// [core/print] - Converts compiled rows into node and edge print elements.
//
// [cache] - File, Redis and scoped caches plus a zstd order store for Bek
// orders keyed by log fingerprint.
//
// [config] - TOML configuration with defaults and validation.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for graph builds and HTTP requests.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/...               # Algorithms only
//	go test -run Example ./pkg/graph     # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/core
// [core/permanent]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/core/permanent
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/core/layout
// [core/bek]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/core/bek
// [core/controller]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/core/controller
// [core/print]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/core/print
// [visible]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/visible
// [visible.BuildPermanent]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/visible#BuildPermanent
// [visible.New]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/visible#New
// [graph]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/graph
// [source]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/source
// [render]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/render
// [render/term]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/render/term
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/commitgraph/pkg/observability
package pkg
