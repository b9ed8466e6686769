// Package print turns a compiled graph into rows of positioned, colored
// print elements for a renderer.
//
// Each row holds the node of that row plus every edge passing through it.
// These cells are ordered left to right by lane, then by node id, which
// gives the column of every element. A row then yields
//   - the node,
//   - an up half for each edge arriving from above,
//   - a down half for each edge leaving downwards, and
//   - both halves for every edge passing through.
//
// Halves carry the column they occupy in this row and the column the same
// edge occupies in the adjacent row, which is all a renderer needs to draw
// a segment.
//
// The set of edges passing through a row is cached every [AnchorInterval]
// rows and extended incrementally, so a window of rows anywhere in a large
// graph is produced without walking the rows above it.
package print
