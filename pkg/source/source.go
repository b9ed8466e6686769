// Package source acquires commit streams for the engine.
//
// The engine needs commits listed children before parents. VCS output
// rarely guarantees that for arbitrary commit sets, so [TopoSort] puts any
// set of commits into an order the engine accepts. Repository readers live
// in subpackages, such as [github.com/matzehuels/commitgraph/pkg/source/gitrepo].
package source

import (
	"container/heap"
	"context"
	"time"

	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/graph"
)

const (
	DefaultLimit   = 100000           // Default maximum commits to read
	DefaultTimeout = 60 * time.Second // Default time budget for reading a repository
)

// Options configures reading a commit stream.
type Options struct {
	Limit   int           // Maximum commits to read (default: 100000)
	Refs    []string      // Refs to start from (default: all branches and HEAD)
	Timeout time.Duration // Time budget (default: 60s)

	// Progress, if set, receives the number of commits read so far every
	// ProgressInterval commits and once at the end.
	Progress func(read int)
}

// ProgressInterval is how many commits pass between Progress calls.
const ProgressInterval = 1000

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts
}

// Source produces a commit log.
type Source interface {
	Log(ctx context.Context, opts Options) (graph.Log, error)
}

// TopoSort orders commits children before parents. Among commits whose
// children are all placed, the newest goes first; equal timestamps fall
// back to input order. Parents outside the set do not constrain the order.
//
// A cycle fails with MALFORMED_PARENT; a repeated id with DUPLICATE_COMMIT.
func TopoSort(ctx context.Context, commits []graph.Commit) ([]graph.Commit, error) {
	index := make(map[string]int, len(commits))
	for i, c := range commits {
		if _, dup := index[c.ID]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateCommit, "commit %s listed twice", c.ID)
		}
		index[c.ID] = i
	}

	children := make([]int, len(commits))
	for _, c := range commits {
		for _, p := range uniqueParents(c.Parents) {
			if j, ok := index[p]; ok {
				children[j]++
			}
		}
	}

	ready := &readyQueue{commits: commits}
	for i, n := range children {
		if n == 0 {
			ready.items = append(ready.items, i)
		}
	}
	heap.Init(ready)

	out := make([]graph.Commit, 0, len(commits))
	for ready.Len() > 0 {
		if len(out)%4096 == 0 {
			if err := errors.Canceled(ctx, "topological sort"); err != nil {
				return nil, err
			}
		}
		i := heap.Pop(ready).(int)
		out = append(out, commits[i])
		for _, p := range uniqueParents(commits[i].Parents) {
			j, ok := index[p]
			if !ok {
				continue
			}
			if children[j]--; children[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}
	if len(out) != len(commits) {
		return nil, errors.New(errors.ErrCodeMalformedParent, "%d commits form a cycle", len(commits)-len(out))
	}
	return out, nil
}

func uniqueParents(parents []string) []string {
	if len(parents) < 2 {
		return parents
	}
	out := make([]string, 0, len(parents))
	for _, p := range parents {
		dup := false
		for _, q := range out {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// readyQueue is a max-heap of commit indexes by timestamp, then min by
// input index.
type readyQueue struct {
	commits []graph.Commit
	items   []int
}

func (q *readyQueue) Len() int { return len(q.items) }

func (q *readyQueue) Less(a, b int) bool {
	ta, tb := q.commits[q.items[a]].Timestamp, q.commits[q.items[b]].Timestamp
	if ta != tb {
		return ta > tb
	}
	return q.items[a] < q.items[b]
}

func (q *readyQueue) Swap(a, b int) { q.items[a], q.items[b] = q.items[b], q.items[a] }
func (q *readyQueue) Push(x any)    { q.items = append(q.items, x.(int)) }

func (q *readyQueue) Pop() any {
	n := len(q.items)
	x := q.items[n-1]
	q.items = q.items[:n-1]
	return x
}
