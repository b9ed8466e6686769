package print

import "github.com/matzehuels/commitgraph/pkg/core/linear"

// Kind is the shape of a print element.
type Kind uint8

const (
	KindNode Kind = iota
	// KindEdgeUp is the half of an edge between the top of a row and its
	// center.
	KindEdgeUp
	// KindEdgeDown is the half of an edge between the center of a row and
	// its bottom.
	KindEdgeDown
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdgeUp:
		return "edge-up"
	case KindEdgeDown:
		return "edge-down"
	}
	return "unknown"
}

// PrintElement is one drawable element of a row.
type PrintElement struct {
	Row      int
	Position int
	// OtherPosition is the column of the same edge in the row above (up
	// halves) or below (down halves). It equals Position for nodes and for
	// not-load stubs.
	OtherPosition int
	Kind          Kind
	EdgeKind      linear.EdgeKind
	Color         int
	Selected      bool
	// Element is the node or edge drawn, in compiled indexes.
	Element linear.Element
}

// ColorPolicy picks a color for a lane. head is the permanent id of the
// node that opened the lane.
type ColorPolicy func(head, lane int) int

// Lanes supplies the layout of the permanent graph.
type Lanes interface {
	LayoutIndex(id int) int
	LaneHead(lane int) int
}
