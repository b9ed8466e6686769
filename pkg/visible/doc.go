// Package visible is the composition root of the commit graph engine.
//
// A [Permanent] bundles everything built once per log refresh: the
// permanent graph, the commit table, the lane layout, the reachability
// index, the resolved branch heads and the lazily sorted Bek order. It is
// immutable once published and may be shared by any number of visible
// graphs across goroutines.
//
// A [Graph] is one interactive view over a Permanent: a controller cascade
// topped by a collapsed or filtered layer, plus the print element manager
// that turns its compiled graph into rows. A Graph serializes its own
// calls with a mutex.
//
// # Cascade
//
// [New] assembles the cascade from [Options]:
//
//	Base -> [Bek] -> [LinearBek] -> Collapsed | Filtered
//
// The Sort option selects the middle layers. Matched commits produce a
// read-only Filtered top; Heads restricts a Collapsed top to the commits
// reachable from those heads; otherwise everything starts visible.
//
// # Rows
//
// Row r of a Graph is compiled node r of the top layer. Row queries outside
// [0, RowCount) fail with OUT_OF_RANGE; they are never clamped.
package visible
