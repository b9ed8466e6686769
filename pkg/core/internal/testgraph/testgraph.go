// Package testgraph builds small permanent graphs for tests of the core packages.
package testgraph

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/commitgraph/pkg/core/permanent"
)

// Commits turns parent lists into a commit stream with ids "c0", "c1", ...
// and timestamps decreasing with the index.
func Commits(parents [][]int) []permanent.Commit[string] {
	commits := make([]permanent.Commit[string], len(parents))
	for i, ps := range parents {
		c := permanent.Commit[string]{ID: Name(i), Timestamp: int64(len(parents)-i) * 1000}
		for _, p := range ps {
			c.Parents = append(c.Parents, Name(p))
		}
		commits[i] = c
	}
	return commits
}

// Name returns the commit id used by Commits for node i.
func Name(i int) string { return fmt.Sprintf("c%d", i) }

// Build builds a permanent graph from parent lists and panics on failure.
func Build(parents [][]int) (*permanent.Graph, *permanent.CommitsInfo[string]) {
	g, info, err := permanent.Build(context.Background(), Commits(parents), permanent.Options{})
	if err != nil {
		panic(err)
	}
	return g, info
}

// OneMerge is the seven-commit fixture: 0-1-2-3, 3 merges 4 and 5, both of
// which have parent 6.
func OneMerge() [][]int {
	return [][]int{
		0: {1},
		1: {2},
		2: {3},
		3: {4, 5},
		4: {6},
		5: {6},
		6: {},
	}
}

// Random returns parent lists for a random topologically ordered DAG of n
// nodes. Each node gets up to maxParents parents drawn from the next window
// indexes, so the graph has branches, merges and several roots.
func Random(seed uint64, n, maxParents, window int) [][]int {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	parents := make([][]int, n)
	for i := 0; i < n; i++ {
		if i == n-1 || r.IntN(10) == 0 {
			continue
		}
		count := 1
		if r.IntN(4) == 0 {
			count = 1 + r.IntN(maxParents)
		}
		for k := 0; k < count; k++ {
			p := i + 1 + r.IntN(window)
			if p >= n {
				p = n - 1
			}
			parents[i] = append(parents[i], p)
		}
	}
	return parents
}
