package graph

import (
	"context"
	"encoding/json"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/commitgraph/pkg/core/controller"
	"github.com/matzehuels/commitgraph/pkg/core/linear"
	"github.com/matzehuels/commitgraph/pkg/errors"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

const sampleLog = `{
	"commits": [
		{"id": "c0", "parents": ["c1"], "timestamp": 3000, "author": "ada", "subject": "Fix parser"},
		{"id": "c1", "parents": ["c2", "gone"], "timestamp": 2000, "author": "bob", "subject": "Merge topic"},
		{"id": "c2", "timestamp": 1000, "author": "ada", "subject": "Initial commit"}
	],
	"heads": ["c0"]
}`

func TestReadLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLen  int
		wantErr  bool
		wantCode errors.Code
	}{
		{name: "Valid", input: sampleLog, wantLen: 3},
		{name: "Empty", input: `{"commits": []}`, wantLen: 0},
		{name: "InvalidJSON", input: `{invalid json}`, wantErr: true},
		{name: "MissingID", input: `{"commits": [{"parents": ["a"]}]}`, wantErr: true, wantCode: errors.ErrCodeInvalidInput},
		{name: "EmptyHead", input: `{"commits": [{"id": "a"}], "heads": [""]}`, wantErr: true, wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ReadLog(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantCode != "" && !errors.Is(err, tt.wantCode) {
					t.Errorf("error = %v, want code %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadLog: %v", err)
			}
			if got := len(l.Commits); got != tt.wantLen {
				t.Errorf("commits = %d, want %d", got, tt.wantLen)
			}
		})
	}
}

func TestLogFileRoundTrip(t *testing.T) {
	l, err := UnmarshalLog([]byte(sampleLog))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "log.json")
	if err := WriteLogFile(l, path); err != nil {
		t.Fatalf("WriteLogFile: %v", err)
	}
	got, err := ReadLogFile(path)
	if err != nil {
		t.Fatalf("ReadLogFile: %v", err)
	}
	if len(got.Commits) != 3 || got.Commits[1].Parents[1] != "gone" || got.Heads[0] != "c0" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestReadLogFileNotFound(t *testing.T) {
	_, err := ReadLogFile(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestPermanentCommits(t *testing.T) {
	l, _ := UnmarshalLog([]byte(sampleLog))
	commits := l.PermanentCommits()
	if len(commits) != 3 {
		t.Fatalf("len = %d, want 3", len(commits))
	}
	if c := commits[1]; c.ID != "c1" || !slices.Equal(c.Parents, []string{"c2", "gone"}) || c.Timestamp != 2000 {
		t.Errorf("commits[1] = %+v", c)
	}
}

func TestMatch(t *testing.T) {
	l, _ := UnmarshalLog([]byte(sampleLog))
	tests := []struct {
		pattern string
		want    []string
	}{
		{"ada", []string{"c0", "c2"}},
		{"(?i)merge", []string{"c1"}},
		{"^c2$", []string{"c2"}},
		{"nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := l.Match(regexp.MustCompile(tt.pattern))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Match(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCommitLabels(t *testing.T) {
	c := Commit{ID: "0123456789abcdef"}
	if c.ShortID() != "0123456" {
		t.Errorf("ShortID() = %q", c.ShortID())
	}
	if c.Label() != c.ID {
		t.Errorf("Label() = %q, want id", c.Label())
	}
	c.Subject = "Fix"
	if c.Label() != "Fix" {
		t.Errorf("Label() = %q, want subject", c.Label())
	}
}

func intp(i int) *int { return &i }

func TestToAction(t *testing.T) {
	node2 := linear.NodeElement(2)
	dotted := linear.EdgeElement(linear.Edge{Up: 1, Down: 4, Kind: linear.EdgeDotted})
	normal := linear.EdgeElement(linear.Edge{Up: 1, Down: 4})
	stub := linear.EdgeElement(linear.NotLoadEdge(3, 1))

	tests := []struct {
		name    string
		req     ActionRequest
		want    controller.Action
		wantErr bool
	}{
		{"node", ActionRequest{Verb: "click", Node: intp(2)}, controller.Action{Verb: controller.VerbClick, Element: &node2}, false},
		{"dotted", ActionRequest{Verb: "hover", Up: intp(4), Down: intp(1), EdgeKind: "dotted"}, controller.Action{Verb: controller.VerbHover, Element: &dotted}, false},
		{"normal default kind", ActionRequest{Verb: "select", Up: intp(1), Down: intp(4)}, controller.Action{Verb: controller.VerbSelect, Element: &normal}, false},
		{"stub", ActionRequest{Verb: "select", Up: intp(3), EdgeKind: "not-load", Target: 1}, controller.Action{Verb: controller.VerbSelect, Element: &stub}, false},
		{"collapse all", ActionRequest{Verb: "collapse-all"}, controller.Action{Verb: controller.VerbCollapseAll}, false},
		{"unknown verb", ActionRequest{Verb: "poke", Node: intp(1)}, controller.Action{}, true},
		{"unknown kind", ActionRequest{Verb: "click", Up: intp(1), Down: intp(2), EdgeKind: "wavy"}, controller.Action{}, true},
		{"missing down", ActionRequest{Verb: "click", Up: intp(1)}, controller.Action{}, true},
		{"missing element", ActionRequest{Verb: "click"}, controller.Action{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToAction(tt.req)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToAction: %v", err)
			}
			if got.Verb != tt.want.Verb {
				t.Errorf("verb = %v, want %v", got.Verb, tt.want.Verb)
			}
			if (got.Element == nil) != (tt.want.Element == nil) || got.Element != nil && *got.Element != *tt.want.Element {
				t.Errorf("element = %v, want %v", got.Element, tt.want.Element)
			}
		})
	}
}

func TestFromAnswer(t *testing.T) {
	ids := func(nodes []int) []string {
		out := make([]string, len(nodes))
		for i, n := range nodes {
			out[i] = "c" + string(rune('0'+n))
		}
		return out
	}

	resp := FromAnswer(controller.Answer{
		Change:    &controller.Change{Hidden: []int{1, 2}},
		Cursor:    controller.CursorHand,
		Selection: []int{3},
	}, ids, 5)
	if !resp.Changed || !slices.Equal(resp.Hidden, []string{"c1", "c2"}) || resp.Shown != nil {
		t.Errorf("change = %+v", resp)
	}
	if resp.Cursor != "hand" || !slices.Equal(resp.Selection, []string{"c3"}) || resp.RowCount != 5 {
		t.Errorf("hints = %+v", resp)
	}

	if empty := FromAnswer(controller.Answer{}, ids, 5); empty.Changed || empty.Cursor != "" || empty.Selection != nil {
		t.Errorf("empty answer = %+v", empty)
	}

	touched := FromAnswer(controller.Answer{
		Change:    &controller.Change{Touched: []int{4}},
		Selection: []int{},
	}, ids, 5)
	if !touched.Changed || touched.Shown != nil || touched.Hidden != nil || touched.Selection != nil {
		t.Errorf("touched-only answer = %+v", touched)
	}
	data, err := json.Marshal(touched)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, field := range []string{`"shown"`, `"hidden"`, `"selection"`} {
		if strings.Contains(string(data), field) {
			t.Errorf("touched-only answer encodes %s: %s", field, data)
		}
	}
}

func TestFromRows(t *testing.T) {
	l, _ := UnmarshalLog([]byte(sampleLog))
	ctx := context.Background()
	p, err := visible.BuildPermanent(ctx, l.PermanentCommits(), l.Heads, visible.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	g, err := visible.New(ctx, p, visible.Options[string]{})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := g.Rows(0, g.RowCount())
	if err != nil {
		t.Fatal(err)
	}

	out := FromRows(rows, l.Index())
	if len(out) != 3 {
		t.Fatalf("rows = %d, want 3", len(out))
	}
	if out[0].Commit != "c0" || out[0].Subject != "Fix parser" || out[0].Timestamp != 3000 {
		t.Errorf("row 0 = %+v", out[0])
	}

	var stub *Element
	for i, el := range out[1].Elements {
		if el.EdgeKind == "not-load" {
			stub = &out[1].Elements[i]
		}
	}
	if stub == nil {
		t.Fatalf("row 1 has no not-load stub: %+v", out[1].Elements)
	}
	if stub.Up != 1 || stub.Down != -1 || stub.Kind != "edge-down" {
		t.Errorf("stub = %+v, want edge-down from row 1 to -1", *stub)
	}
	for _, el := range out[0].Elements {
		if el.Kind == "node" && (el.Up != 0 || el.Down != 0) {
			t.Errorf("node element = %+v, want row 0 endpoints", el)
		}
	}
}
