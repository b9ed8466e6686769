package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/graph"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

func chain() []permanent.Commit[string] {
	return []permanent.Commit[string]{
		{ID: "c0", Parents: []string{"c1"}, Timestamp: 4},
		{ID: "c1", Parents: []string{"c2"}, Timestamp: 3},
		{ID: "c2", Parents: []string{"c3", "gone"}, Timestamp: 2},
		{ID: "c3", Timestamp: 1},
	}
}

func TestToDOT(t *testing.T) {
	g, info, err := permanent.Build(context.Background(), chain(), permanent.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dot := ToDOT(g, func(row int) Node {
		return Node{ID: info.CommitID(row), Subject: "s" + info.CommitID(row)}
	}, Options{Detailed: true, Palette: []string{"#112233"}})

	for _, want := range []string{
		"digraph G {",
		`r0 [label="c0 sc0\nrow: 0\ntimestamp: 0", color="#112233", penwidth=2];`,
		"r0 -> r1;",
		"r1 -> r2;",
		"r2 -> r3;",
		"r2 -> m2_0 [style=dashed, color=grey];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestFromVisibleDottedEdge(t *testing.T) {
	ctx := context.Background()
	p, err := visible.BuildPermanent(ctx, chain(), []string{"c0"}, visible.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildPermanent: %v", err)
	}
	g, err := visible.New(ctx, p, visible.Options[string]{Matched: []string{"c0", "c3"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	subjects := map[string]*graph.Commit{"c0": {ID: "c0", Subject: "tip"}}

	dot := FromVisible(g, subjects, Options{})
	if !strings.Contains(dot, `r0 [label="c0 tip"];`) {
		t.Errorf("DOT missing subject label:\n%s", dot)
	}
	if !strings.Contains(dot, "r0 -> r1 [style=dotted];") {
		t.Errorf("DOT missing dotted edge:\n%s", dot)
	}
	if strings.Contains(dot, "r2") {
		t.Errorf("DOT has hidden rows:\n%s", dot)
	}
}

func TestFromVisibleNamesMissingParents(t *testing.T) {
	ctx := context.Background()
	p, err := visible.BuildPermanent(ctx, chain(), []string{"c0"}, visible.BuildOptions{})
	if err != nil {
		t.Fatalf("BuildPermanent: %v", err)
	}
	g, err := visible.New(ctx, p, visible.Options[string]{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dot := FromVisible(g, nil, Options{})
	if want := `m2_0 [shape=point, color=grey, label="", tooltip="gone"];`; !strings.Contains(dot, want) {
		t.Errorf("DOT missing %q:\n%s", want, dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), "digraph G { a -> b; }")
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output is not SVG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox = %s, want %s", out, want)
	}
}
