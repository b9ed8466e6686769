package permanent

// Commit is one entry of the commit stream handed to [Build].
// A zero Timestamp means the VCS did not report one.
type Commit[C comparable] struct {
	ID        C
	Parents   []C
	Timestamp int64
}

// CommitsInfo maps node ids to external commit ids and timestamps, and back.
// The reverse map is built once by [Build], so lookups never rescan.
type CommitsInfo[C comparable] struct {
	ids        []C
	timestamps []int64
	index      map[C]int
	missing    []C
}

// Len returns the number of loaded commits.
func (ci *CommitsInfo[C]) Len() int { return len(ci.ids) }

// CommitID returns the external id of node id.
func (ci *CommitsInfo[C]) CommitID(id int) C { return ci.ids[id] }

// CommitIDs maps a list of node ids to external ids.
func (ci *CommitsInfo[C]) CommitIDs(ids []int) []C {
	out := make([]C, len(ids))
	for i, id := range ids {
		out[i] = ci.ids[id]
	}
	return out
}

// Timestamp returns the commit time of node id in milliseconds.
func (ci *CommitsInfo[C]) Timestamp(id int) int64 { return ci.timestamps[id] }

// NodeID returns the node id of commit c.
func (ci *CommitsInfo[C]) NodeID(c C) (int, bool) {
	id, ok := ci.index[c]
	return id, ok
}

// NodeIDs resolves commits to node ids, skipping unknown ones.
func (ci *CommitsInfo[C]) NodeIDs(commits []C) []int {
	ids := make([]int, 0, len(commits))
	for _, c := range commits {
		if id, ok := ci.index[c]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// MissingParents returns the parents referenced by the stream but not
// loaded, indexed by the Target ordinal of not-load edges.
func (ci *CommitsInfo[C]) MissingParents() []C { return ci.missing }

// MissingParent returns the missing parent with the given ordinal.
func (ci *CommitsInfo[C]) MissingParent(ordinal int) C { return ci.missing[ordinal] }
