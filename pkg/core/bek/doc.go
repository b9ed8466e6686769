// Package bek computes the Bek order of a permanent graph.
//
// The Bek order is an alternate topological order that keeps the commits of
// a merged branch together right below the merge, instead of interleaving
// them with the main line by commit time. Fewer edges then cross rows that
// belong to unrelated branches.
//
// [Sort] computes an [Order] from the graph, its layout and the commit
// timestamps. [Memo] computes it at most once per permanent graph, shares
// it between all visible graphs built from that graph, and can persist it
// through a [Store]. [Order.View] exposes the permuted graph as a
// [linear.Graph].
package bek
