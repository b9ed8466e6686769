// Package gitrepo reads commit streams from local Git repositories using go-git.
package gitrepo

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/graph"
	"github.com/matzehuels/commitgraph/pkg/source"
)

// Head is a branch and the commit it points at.
type Head struct {
	Name string
	Hash string
}

// Repository wraps a go-git repository.
type Repository struct {
	repo *git.Repository
	path string
}

var _ source.Source = (*Repository)(nil)

// Open opens the Git repository containing path.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &Repository{repo: repo, path: path}, nil
}

// Path returns the path the repository was opened from.
func (r *Repository) Path() string { return r.path }

// Heads returns the local branches, sorted by name.
func (r *Repository) Heads() ([]Head, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	var heads []Head
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		heads = append(heads, Head{Name: ref.Name().Short(), Hash: ref.Hash().String()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i].Name < heads[j].Name })
	return heads, nil
}

// Log reads up to opts.Limit commits reachable from opts.Refs, newest by
// committer time first. Parents beyond the limit stay referenced but are not
// loaded. The result is in topological order and its heads are the loaded
// start commits.
func (r *Repository) Log(ctx context.Context, opts source.Options) (graph.Log, error) {
	opts = opts.WithDefaults()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	starts, err := r.starts(opts.Refs)
	if err != nil {
		return graph.Log{}, err
	}

	queue := &commitQueue{}
	seen := make(map[plumbing.Hash]bool)
	for _, h := range starts {
		if seen[h] {
			continue
		}
		c, err := r.repo.CommitObject(h)
		if err != nil {
			return graph.Log{}, fmt.Errorf("reading commit %s: %w", h, err)
		}
		seen[h] = true
		heap.Push(queue, c)
	}

	var commits []graph.Commit
	loaded := make(map[string]bool)
	for queue.Len() > 0 && len(commits) < opts.Limit {
		if err := errors.Canceled(ctx, "reading repository"); err != nil {
			return graph.Log{}, err
		}
		c := heap.Pop(queue).(*object.Commit)
		commits = append(commits, fromObject(c))
		loaded[c.Hash.String()] = true
		if opts.Progress != nil && len(commits)%source.ProgressInterval == 0 {
			opts.Progress(len(commits))
		}

		for _, ph := range c.ParentHashes {
			if seen[ph] {
				continue
			}
			seen[ph] = true
			p, err := r.repo.CommitObject(ph)
			if err != nil {
				// Shallow clones end in parents that are not stored.
				if err == plumbing.ErrObjectNotFound {
					continue
				}
				return graph.Log{}, fmt.Errorf("reading commit %s: %w", ph, err)
			}
			heap.Push(queue, p)
		}
	}

	if opts.Progress != nil {
		opts.Progress(len(commits))
	}

	sorted, err := source.TopoSort(ctx, commits)
	if err != nil {
		return graph.Log{}, err
	}
	l := graph.Log{Commits: sorted}
	for _, h := range starts {
		id := h.String()
		if loaded[id] && !containsString(l.Heads, id) {
			l.Heads = append(l.Heads, id)
		}
	}
	return l, nil
}

// starts resolves refs, or every branch and HEAD when refs is empty.
func (r *Repository) starts(refs []string) ([]plumbing.Hash, error) {
	if len(refs) > 0 {
		hashes := make([]plumbing.Hash, 0, len(refs))
		for _, name := range refs {
			h, err := r.repo.ResolveRevision(plumbing.Revision(name))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeNotFound, err, "resolving ref %q", name)
			}
			hashes = append(hashes, *h)
		}
		return hashes, nil
	}

	var hashes []plumbing.Hash
	if head, err := r.repo.Head(); err == nil {
		hashes = append(hashes, head.Hash())
	}
	heads, err := r.Heads()
	if err != nil {
		return nil, err
	}
	for _, h := range heads {
		hashes = append(hashes, plumbing.NewHash(h.Hash))
	}
	if len(hashes) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "repository has no commits")
	}
	return hashes, nil
}

func fromObject(c *object.Commit) graph.Commit {
	out := graph.Commit{
		ID:        c.Hash.String(),
		Timestamp: c.Committer.When.UnixMilli(),
		Author:    c.Author.Name,
		Subject:   subject(c.Message),
	}
	for _, p := range c.ParentHashes {
		out.Parents = append(out.Parents, p.String())
	}
	return out
}

func subject(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return strings.TrimSpace(line)
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// commitQueue is a max-heap of commits by committer time.
type commitQueue []*object.Commit

func (q commitQueue) Len() int { return len(q) }
func (q commitQueue) Less(i, j int) bool {
	return q[i].Committer.When.After(q[j].Committer.When)
}
func (q commitQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *commitQueue) Push(x any)   { *q = append(*q, x.(*object.Commit)) }
func (q *commitQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}
