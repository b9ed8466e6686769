// Package render groups the output formats of visible commit graphs.
//
//   - [term]: colored text lanes for terminals
//   - [nodelink]: Graphviz DOT and SVG diagrams
//
// Both work on the same rows and compiled graph that the HTTP API serves,
// so a collapsed range looks the same in every format.
//
// [term]: github.com/matzehuels/commitgraph/pkg/render/term
// [nodelink]: github.com/matzehuels/commitgraph/pkg/render/nodelink
package render
