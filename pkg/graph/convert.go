package graph

import (
	"github.com/matzehuels/commitgraph/pkg/core/controller"
	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

// FromRows converts rendered rows to their serialization format.
// subjects, if non-nil, supplies commit subjects.
func FromRows(rows []visible.RowInfo[string], subjects map[string]*Commit) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		row := Row{
			Row:       r.Row,
			Commit:    r.CommitID,
			Timestamp: r.Timestamp,
			Elements:  make([]Element, len(r.Elements)),
		}
		if c, ok := subjects[r.CommitID]; ok {
			row.Subject = c.Subject
		}
		for j, pe := range r.Elements {
			el := Element{
				Kind:          pe.Kind.String(),
				Position:      pe.Position,
				OtherPosition: pe.OtherPosition,
				Color:         pe.Color,
				Selected:      pe.Selected,
			}
			if pe.Element.IsNode() {
				el.Up, el.Down = pe.Element.Node, pe.Element.Node
			} else {
				el.EdgeKind = pe.EdgeKind.String()
				el.Up, el.Down = pe.Element.Edge.Up, pe.Element.Edge.Down
				el.Target = pe.Element.Edge.Target
			}
			row.Elements[j] = el
		}
		out[i] = row
	}
	return out
}

// ToAction converts a request into an engine action addressed in rows.
func ToAction(req ActionRequest) (controller.Action, error) {
	verb, ok := controller.ParseVerb(req.Verb)
	if !ok {
		return controller.Action{}, errors.New(errors.ErrCodeInvalidInput, "unknown verb %q", req.Verb)
	}
	a := controller.Action{Verb: verb}

	switch {
	case req.Node != nil:
		el := linear.NodeElement(*req.Node)
		a.Element = &el
	case req.Up != nil:
		kind, ok := parseEdgeKind(req.EdgeKind)
		if !ok {
			return controller.Action{}, errors.New(errors.ErrCodeInvalidInput, "unknown edge kind %q", req.EdgeKind)
		}
		var e linear.Edge
		switch {
		case kind == linear.EdgeNotLoad:
			e = linear.NotLoadEdge(*req.Up, req.Target)
		case req.Down == nil:
			return controller.Action{}, errors.New(errors.ErrCodeInvalidInput, "edge action needs both endpoints")
		default:
			e = linear.NewEdge(*req.Up, *req.Down, kind)
		}
		el := linear.EdgeElement(e)
		a.Element = &el
	case verb != controller.VerbCollapseAll && verb != controller.VerbExpandAll:
		return controller.Action{}, errors.New(errors.ErrCodeInvalidInput, "%s needs a node or an edge", req.Verb)
	}
	return a, nil
}

// FromAnswer converts an action answer to its serialization format.
// commitIDs resolves permanent node ids. Empty id lists stay nil.
func FromAnswer(ans controller.Answer, commitIDs func([]int) []string, rowCount int) ActionResponse {
	resp := ActionResponse{RowCount: rowCount}
	resolve := func(nodes []int) []string {
		if len(nodes) == 0 {
			return nil
		}
		return commitIDs(nodes)
	}
	if !ans.Change.IsEmpty() {
		resp.Changed = true
		resp.Shown = resolve(ans.Change.Shown)
		resp.Hidden = resolve(ans.Change.Hidden)
	}
	if ans.Cursor == controller.CursorHand {
		resp.Cursor = "hand"
	}
	resp.Selection = resolve(ans.Selection)
	return resp
}

// parseEdgeKind maps an edge kind name to its value. Empty means normal.
func parseEdgeKind(name string) (linear.EdgeKind, bool) {
	for _, k := range []linear.EdgeKind{linear.EdgeNormal, linear.EdgeNotLoad, linear.EdgeDotted} {
		if k.String() == name {
			return k, true
		}
	}
	return linear.EdgeNormal, name == ""
}
