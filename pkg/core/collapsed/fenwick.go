package collapsed

import "math/bits"

// fenwick counts visible nodes by prefix so that delegate and visible
// indexes convert in O(log n). Slot i+1 holds node i.
type fenwick struct {
	tree []int32
	step int
}

// newFenwick builds a tree where node i counts as one if visible(i).
func newFenwick(n int, visible func(i int) bool) *fenwick {
	f := &fenwick{tree: make([]int32, n+1)}
	if n > 0 {
		f.step = 1 << (bits.Len(uint(n)) - 1)
	}
	for i := 1; i <= n; i++ {
		if visible(i - 1) {
			f.tree[i]++
		}
		if j := i + i&(-i); j <= n {
			f.tree[j] += f.tree[i]
		}
	}
	return f
}

// add changes the count of node i by delta.
func (f *fenwick) add(i int, delta int32) {
	for idx := i + 1; idx < len(f.tree); idx += idx & (-idx) {
		f.tree[idx] += delta
	}
}

// rank returns the number of visible nodes before node i.
func (f *fenwick) rank(i int) int {
	sum := int32(0)
	for idx := i; idx > 0; idx -= idx & (-idx) {
		sum += f.tree[idx]
	}
	return int(sum)
}

// total returns the number of visible nodes.
func (f *fenwick) total() int { return f.rank(len(f.tree) - 1) }

// find returns the node holding the k-th (zero-based) visible position.
// k must be less than total().
func (f *fenwick) find(k int) int {
	pos := 0
	rem := int32(k + 1)
	for step := f.step; step > 0; step >>= 1 {
		if next := pos + step; next < len(f.tree) && f.tree[next] < rem {
			pos = next
			rem -= f.tree[next]
		}
	}
	return pos
}
