package controller

import (
	"context"

	"github.com/matzehuels/commitgraph/pkg/core/bek"
	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
)

// Layer is one stage of a cascade. The set of layers is closed: *Base,
// *Bek, *LinearBek, *Collapsed and *Filtered.
type Layer interface {
	// Compiled returns the graph this layer presents to the layer above.
	Compiled() linear.Graph
	// Delegate returns the layer below, or nil for the base.
	Delegate() Layer

	layer()
}

// Base exposes the permanent graph in construction order.
type Base struct {
	g *permanent.Graph
}

// NewBase returns the base layer over g.
func NewBase(g *permanent.Graph) *Base { return &Base{g: g} }

func (b *Base) Compiled() linear.Graph { return b.g }
func (b *Base) Delegate() Layer        { return nil }
func (*Base) layer()                   {}

// Bek exposes the permanent graph in Bek order.
type Bek struct {
	base *Base
	view *bek.Graph
}

// NewBek returns a layer that permutes base by order.
func NewBek(base *Base, order *bek.Order) *Bek {
	return &Bek{base: base, view: order.View(base.g)}
}

func (b *Bek) Compiled() linear.Graph { return b.view }
func (b *Bek) Delegate() Layer        { return b.base }
func (*Bek) layer()                   {}

// Dispatch performs a on the top layer l and returns its answer. Errors
// come only from cancellation of a long visibility update; a failed update
// leaves the cascade unchanged.
func Dispatch(ctx context.Context, l Layer, a Action) (Answer, error) {
	if a.Element != nil && !validElement(l.Compiled(), *a.Element) {
		return Answer{}, nil
	}
	switch l := l.(type) {
	case *Base:
		return dispatchBase(l, a), nil
	case *Bek:
		return dispatchDelegate(ctx, l, a, l.toDelegate)
	case *LinearBek:
		return l.dispatch(ctx, a)
	case *Collapsed:
		return l.dispatch(ctx, a)
	case *Filtered:
		return Answer{}, nil
	}
	return Answer{}, nil
}

// dispatchDelegate converts a's element with convert and dispatches the
// action to the delegate of l. A failed conversion is the empty answer.
func dispatchDelegate(ctx context.Context, l Layer, a Action, convert func(linear.Element) (linear.Element, bool)) (Answer, error) {
	if a.Element != nil {
		el, ok := convert(*a.Element)
		if !ok {
			return Answer{}, nil
		}
		a.Element = &el
	}
	return Dispatch(ctx, l.Delegate(), a)
}

func dispatchBase(b *Base, a Action) Answer {
	if a.Verb != VerbSelect || a.Element == nil {
		return Answer{}
	}
	return Answer{Selection: permanentIDs(b.g, a.Element.Endpoints())}
}

// toDelegate maps rows to permanent ids. Child-before-parent order holds in
// both spaces, so edge endpoints keep their roles.
func (b *Bek) toDelegate(el linear.Element) (linear.Element, bool) {
	if el.IsNode() {
		return linear.NodeElement(b.view.NodeID(el.Node)), true
	}
	e := el.Edge
	e.Up = b.view.NodeID(e.Up)
	if e.IsLoaded() {
		e.Down = b.view.NodeID(e.Down)
	}
	return linear.EdgeElement(e), true
}

// validElement reports whether el addresses a node or an existing edge of g.
func validElement(g linear.Graph, el linear.Element) bool {
	if el.IsNode() {
		return linear.InRange(g, el.Node)
	}
	return linear.HasEdge(g, el.Edge)
}

func permanentIDs(g linear.Graph, indexes []int) []int {
	ids := make([]int, len(indexes))
	for i, idx := range indexes {
		ids[i] = g.NodeID(idx)
	}
	return ids
}

// BaseOf returns the base at the bottom of the cascade under l.
func BaseOf(l Layer) *Base {
	for l.Delegate() != nil {
		l = l.Delegate()
	}
	return l.(*Base)
}
