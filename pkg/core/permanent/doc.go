// Package permanent builds the immutable, full-history commit graph.
//
// [Build] turns a caller-ordered list of commits into a [Graph] (compressed
// adjacency arrays, node ids 0..n-1 in input order) and a [CommitsInfo]
// side table mapping ids to external commit identifiers and timestamps.
//
// The input must list every commit before its parents, which is what
// `git log --topo-order` and [source.TopoSort] produce. Parents that are not
// part of the input become not-load edges instead of failing the build, so a
// window of recent history can be loaded on its own.
//
// Both results are immutable once returned and safe for concurrent reads.
//
// [source.TopoSort]: github.com/matzehuels/commitgraph/pkg/source
package permanent
