// Package collapsed hides nodes of a delegate graph and keeps the rest
// connected through synthetic dotted edges.
//
// A [Graph] owns one visibility bit per delegate index. Its compiled view
// contains the visible nodes only, renumbered densely, with
//   - every delegate edge whose endpoints are both visible,
//   - every not-load edge of a visible node, and
//   - one dotted edge U->D for each pair of visible nodes joined by at least
//     one delegate path whose interior nodes are all hidden.
//
// Visibility changes go through [Graph.Modify], which stages them, applies
// them together and regenerates only the dotted edges whose hidden paths
// run through a changed node. A canceled or failed Modify leaves the graph
// as it was.
//
// A Graph is not safe for concurrent mutation. The visible graph facade
// serializes all actions behind one lock.
package collapsed
