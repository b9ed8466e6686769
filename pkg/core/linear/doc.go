// Package linear defines the row-addressed graph contract shared by every
// stage of the commit-graph engine.
//
// # Overview
//
// A commit history is a DAG whose edges point from a child commit to each of
// its parents. For rendering, the DAG is laid out as a list of rows: every
// node occupies exactly one row, and every edge connects an upper row (the
// child) to a lower row (the parent). A [Graph] exposes this view by node
// index, where an index is simply a row number in that particular graph.
//
// Every node also carries a stable node id: the index it was assigned in the
// permanent graph built from the VCS commit list. Derived graphs (a reordered
// view, a collapsed view, a filtered view) renumber rows but always report the
// permanent id through [Graph.NodeID], so ids can be carried across any number
// of layers without translation tables.
//
// # Edges
//
// An [Edge] is identified by its two endpoint indexes and its [EdgeKind]:
//
//   - [EdgeNormal]: a real child to parent link
//   - [EdgeNotLoad]: a link to a parent outside the loaded window; Down is [NoNode]
//   - [EdgeDotted]: a synthetic link standing in for a path through hidden nodes
//
// Edges are plain comparable values and may be used as map keys.
//
// # Elements
//
// An [Element] is either a node or an edge. Interactive actions target
// elements, and print elements refer back to the element they render.
package linear
