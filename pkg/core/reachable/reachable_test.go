package reachable

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/commitgraph/pkg/core/internal/testgraph"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

// reaches is the brute-force oracle: depth-first search over parents.
func reaches(g *permanent.Graph, from, to int) bool {
	stack := []int{from}
	seen := map[int]bool{from: true}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		for _, p := range g.DownNodes(cur) {
			if !seen[p] {
				seen[p] = true
				stack = append(stack, p)
			}
		}
	}
	return false
}

func TestWalk(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	r := New(g)

	tests := []struct {
		name   string
		starts []int
		want   []int
	}{
		{"from head", []int{0}, []int{0, 1, 2, 3, 4, 5, 6}},
		{"from side branch", []int{5}, []int{5, 6}},
		{"duplicate starts", []int{4, 4, 5}, []int{4, 5, 6}},
		{"no starts", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			err := r.Walk(context.Background(), tt.starts, func(id int) bool {
				got = append(got, id)
				return true
			})
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Walk(%v) = %v, want %v", tt.starts, got, tt.want)
			}
		})
	}
}

func TestWalkStops(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	r := New(g)

	visits := 0
	err := r.Walk(context.Background(), []int{0}, func(int) bool {
		visits++
		return visits < 3
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if visits != 3 {
		t.Errorf("visits = %d, want 3", visits)
	}

	// The pooled visited set must come back clean.
	var got []int
	_ = r.Walk(context.Background(), []int{0}, func(id int) bool {
		got = append(got, id)
		return true
	})
	if len(got) != 7 {
		t.Errorf("second walk visited %d nodes, want 7", len(got))
	}
}

func TestWalkErrors(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	r := New(g)

	err := r.Walk(context.Background(), []int{7}, func(int) bool { return true })
	if !errors.Is(err, errors.ErrCodeOutOfRange) {
		t.Errorf("Walk(7) error = %v, want OUT_OF_RANGE", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.Walk(ctx, []int{0}, func(int) bool { return true })
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Walk on canceled ctx error = %v, want CANCELED", err)
	}
}

func TestContainingBranchesOneMerge(t *testing.T) {
	g, _ := testgraph.Build(testgraph.OneMerge())
	r := New(g)

	got, err := r.ContainingBranches(context.Background(), 5, []int{0, 4, 5, 6})
	if err != nil {
		t.Fatalf("ContainingBranches: %v", err)
	}
	if want := []int{0, 5}; !slices.Equal(got, want) {
		t.Errorf("ContainingBranches(5) = %v, want %v", got, want)
	}
}

func TestContainingBranchesMatchesOracle(t *testing.T) {
	ctx := context.Background()
	for seed := uint64(1); seed <= 10; seed++ {
		g, _ := testgraph.Build(testgraph.Random(seed, 40, 3, 5))
		r := New(g)
		branches := []int{0, 3, 7, 12, 20}

		for id := 0; id < g.NodesCount(); id++ {
			got, err := r.ContainingBranches(ctx, id, branches)
			if err != nil {
				t.Fatalf("ContainingBranches: %v", err)
			}
			var want []int
			for _, b := range branches {
				if reaches(g, b, id) {
					want = append(want, b)
				}
			}
			if !slices.Equal(got, want) {
				t.Errorf("seed %d: ContainingBranches(%d) = %v, want %v", seed, id, got, want)
			}
		}
	}
}

func TestContainedInBranchCondition(t *testing.T) {
	ctx := context.Background()
	for seed := uint64(1); seed <= 10; seed++ {
		g, _ := testgraph.Build(testgraph.Random(seed, 40, 3, 5))
		r := New(g)
		heads := []int{2, 9}

		cond, err := r.ContainedInBranchCondition(ctx, heads)
		if err != nil {
			t.Fatalf("ContainedInBranchCondition: %v", err)
		}
		count := 0
		for id := 0; id < g.NodesCount(); id++ {
			want := reaches(g, 2, id) || reaches(g, 9, id)
			if want {
				count++
			}
			if cond.Contains(id) != want {
				t.Errorf("seed %d: Contains(%d) = %v, want %v", seed, id, cond.Contains(id), want)
			}
		}
		if cond.Count() != count {
			t.Errorf("seed %d: Count = %d, want %d", seed, cond.Count(), count)
		}
	}
}
