// Package controller implements the cascade of graph layers behind a
// visible graph and routes user actions through it.
//
// A cascade is built bottom-up:
//
//	Base -> [Bek] -> [LinearBek] -> Collapsed
//	Base -> [Bek] -> Filtered
//
// Every layer exposes a compiled [linear.Graph] and wraps the layer below
// it. [Dispatch] hands an action to the top layer. A layer first tries to
// handle the action itself; otherwise it converts the target element into
// its delegate's index space and dispatches there, then reacts to any graph
// change the delegate reports. Elements that have no delegate counterpart,
// such as dotted edges, resolve to the empty [Answer].
//
// Answers carry node ids in the permanent id space, so they mean the same
// thing at every layer.
package controller
