package controller

import (
	"slices"

	"github.com/matzehuels/commitgraph/pkg/core/linear"
)

// Verb is what the user did to an element.
type Verb uint8

const (
	VerbClick Verb = iota
	VerbHover
	VerbSelect
	VerbCollapseAll
	VerbExpandAll
)

var verbNames = [...]string{"click", "hover", "select", "collapse-all", "expand-all"}

// String returns the lowercase name of the verb.
func (v Verb) String() string {
	if int(v) < len(verbNames) {
		return verbNames[v]
	}
	return "unknown"
}

// ParseVerb returns the verb with the given name.
func ParseVerb(name string) (Verb, bool) {
	i := slices.Index(verbNames[:], name)
	return Verb(i), i >= 0
}

// Action is a verb applied to an element of the compiled graph of the layer
// it is dispatched to. Element is nil for the collapse-all and expand-all
// verbs.
type Action struct {
	Verb    Verb
	Element *linear.Element
}

// Cursor is a pointer shape hint for the UI.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorHand
)

// Change describes a graph mutation in permanent node ids. Touched nodes
// kept their visibility but gained or lost edges.
type Change struct {
	Shown   []int
	Hidden  []int
	Touched []int
}

// IsEmpty reports whether the change mutated nothing.
func (c *Change) IsEmpty() bool {
	return c == nil || len(c.Shown) == 0 && len(c.Hidden) == 0 && len(c.Touched) == 0
}

func (c *Change) merge(other *Change) *Change {
	switch {
	case other.IsEmpty():
		return c
	case c.IsEmpty():
		return other
	}
	return &Change{
		Shown:   append(slices.Clone(c.Shown), other.Shown...),
		Hidden:  append(slices.Clone(c.Hidden), other.Hidden...),
		Touched: append(slices.Clone(c.Touched), other.Touched...),
	}
}

// Answer is the result of an action. The zero Answer means nothing happened.
type Answer struct {
	Change    *Change
	Cursor    Cursor
	Selection []int
}

// IsEmpty reports whether the answer carries no change, no cursor hint and
// no selection.
func (a Answer) IsEmpty() bool {
	return a.Change.IsEmpty() && a.Cursor == CursorDefault && a.Selection == nil
}
