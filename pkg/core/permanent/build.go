package permanent

import (
	"context"
	"math"

	"github.com/matzehuels/commitgraph/pkg/errors"
)

// cancelCheckInterval is how many commits are processed between context checks.
const cancelCheckInterval = 1 << 12

// Options configures [Build].
type Options struct {
	// MissingTimestamp replaces zero timestamps.
	MissingTimestamp int64
}

// Build assigns node ids 0..n-1 in input order and resolves parent links.
//
// Build fails with DUPLICATE_COMMIT if an id appears twice, and with
// MALFORMED_PARENT if a commit lists itself or a parent that appears earlier
// in the stream. Unknown parents become not-load edges. Repeated parents of
// one commit are collapsed into a single edge. On failure or cancellation
// nothing is returned.
func Build[C comparable](ctx context.Context, commits []Commit[C], opts Options) (*Graph, *CommitsInfo[C], error) {
	n := len(commits)
	if n >= math.MaxInt32 {
		return nil, nil, errors.New(errors.ErrCodeUnsupported, "%d commits exceed the graph capacity", n)
	}

	info := &CommitsInfo[C]{
		ids:        make([]C, n),
		timestamps: make([]int64, n),
		index:      make(map[C]int, n),
	}
	for i, c := range commits {
		if i%cancelCheckInterval == 0 {
			if err := errors.Canceled(ctx, "graph build"); err != nil {
				return nil, nil, err
			}
		}
		if prev, dup := info.index[c.ID]; dup {
			return nil, nil, errors.New(errors.ErrCodeDuplicateCommit, "commit %v listed at %d and %d", c.ID, prev, i)
		}
		info.index[c.ID] = i
		info.ids[i] = c.ID
		info.timestamps[i] = c.Timestamp
		if c.Timestamp == 0 {
			info.timestamps[i] = opts.MissingTimestamp
		}
	}

	g := &Graph{downStart: make([]int32, n+1)}
	missingIndex := make(map[C]int)
	upDegree := make([]int32, n+1)
	for i, c := range commits {
		if i%cancelCheckInterval == 0 {
			if err := errors.Canceled(ctx, "graph build"); err != nil {
				return nil, nil, err
			}
		}
		start := len(g.down)
		for _, p := range c.Parents {
			ref, err := resolveParent(info, missingIndex, i, c.ID, p)
			if err != nil {
				return nil, nil, err
			}
			if containsInt32(g.down[start:], ref) {
				continue
			}
			g.down = append(g.down, ref)
			if ref >= 0 {
				upDegree[ref+1]++
			}
		}
		g.downStart[i+1] = int32(len(g.down))
	}

	info.missing = make([]C, len(missingIndex))
	for c, ordinal := range missingIndex {
		info.missing[ordinal] = c
	}

	g.upStart = upDegree
	for i := 1; i <= n; i++ {
		g.upStart[i] += g.upStart[i-1]
	}
	g.up = make([]int32, g.upStart[n])
	fill := make([]int32, n)
	copy(fill, g.upStart[:n])
	for child := 0; child < n; child++ {
		for _, p := range g.down[g.downStart[child]:g.downStart[child+1]] {
			if p < 0 {
				continue
			}
			g.up[fill[p]] = int32(child)
			fill[p]++
		}
	}

	return g, info, nil
}

func resolveParent[C comparable](info *CommitsInfo[C], missing map[C]int, child int, childID, parent C) (int32, error) {
	id, ok := info.index[parent]
	if !ok {
		ordinal, seen := missing[parent]
		if !seen {
			ordinal = len(missing)
			missing[parent] = ordinal
		}
		return int32(-ordinal - 1), nil
	}
	if id == child {
		return 0, errors.New(errors.ErrCodeMalformedParent, "commit %v lists itself as a parent", childID)
	}
	if id < child {
		return 0, errors.New(errors.ErrCodeMalformedParent, "commit %v has parent %v listed before it", childID, parent)
	}
	return int32(id), nil
}

func containsInt32(s []int32, v int32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
