package linear

import "fmt"

// ElementKind tells whether an [Element] is a node or an edge.
type ElementKind uint8

const (
	ElementNode ElementKind = iota
	ElementEdge
)

// Element is a node or an edge of a specific graph. For node elements only
// Node is meaningful; for edge elements only Edge is.
type Element struct {
	Kind ElementKind
	Node int
	Edge Edge
}

// NodeElement returns the element for the node at index.
func NodeElement(index int) Element {
	return Element{Kind: ElementNode, Node: index}
}

// EdgeElement returns the element for e.
func EdgeElement(e Edge) Element {
	return Element{Kind: ElementEdge, Node: NoNode, Edge: e}
}

// IsNode reports whether the element is a node.
func (el Element) IsNode() bool { return el.Kind == ElementNode }

// Endpoints returns the node indexes the element touches: the node itself,
// or both loaded endpoints of the edge.
func (el Element) Endpoints() []int {
	if el.IsNode() {
		return []int{el.Node}
	}
	if el.Edge.IsLoaded() {
		return []int{el.Edge.Up, el.Edge.Down}
	}
	return []int{el.Edge.Up}
}

func (el Element) String() string {
	if el.IsNode() {
		return fmt.Sprintf("node(%d)", el.Node)
	}
	return fmt.Sprintf("%s-edge(%d->%d)", el.Edge.Kind, el.Edge.Up, el.Edge.Down)
}
