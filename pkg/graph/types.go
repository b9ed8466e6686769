package graph

import (
	"regexp"

	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/errors"
)

// =============================================================================
// Log - Commit Stream Serialization
// =============================================================================

// Log is the canonical serialization format for commit streams.
//
// Commits are listed children before parents. Heads name the commits that
// refs point at; they drive branch containment and branch filters.
type Log struct {
	Commits []Commit `json:"commits"`
	Heads   []string `json:"heads,omitempty"`
}

// Commit is one entry of a [Log].
type Commit struct {
	ID        string   `json:"id"`
	Parents   []string `json:"parents,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"` // Unix milliseconds
	Author    string   `json:"author,omitempty"`
	Subject   string   `json:"subject,omitempty"`
}

// Label returns the subject if set, otherwise the ID.
func (c *Commit) Label() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.ID
}

// ShortID returns the first seven characters of the ID.
func (c *Commit) ShortID() string {
	if len(c.ID) > 7 {
		return c.ID[:7]
	}
	return c.ID
}

// Validate checks that every commit has an ID.
// Duplicates and parent order are checked when the graph is built.
func (l *Log) Validate() error {
	for i, c := range l.Commits {
		if c.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "commit %d has no id", i)
		}
	}
	for i, h := range l.Heads {
		if h == "" {
			return errors.New(errors.ErrCodeInvalidInput, "head %d is empty", i)
		}
	}
	return nil
}

// PermanentCommits converts the log into engine input.
func (l *Log) PermanentCommits() []permanent.Commit[string] {
	out := make([]permanent.Commit[string], len(l.Commits))
	for i, c := range l.Commits {
		out[i] = permanent.Commit[string]{ID: c.ID, Parents: c.Parents, Timestamp: c.Timestamp}
	}
	return out
}

// Index maps commit IDs to their entries.
func (l *Log) Index() map[string]*Commit {
	idx := make(map[string]*Commit, len(l.Commits))
	for i := range l.Commits {
		idx[l.Commits[i].ID] = &l.Commits[i]
	}
	return idx
}

// Match returns the IDs of commits whose ID, author or subject matches re,
// in log order.
func (l *Log) Match(re *regexp.Regexp) []string {
	matched := []string{}
	for _, c := range l.Commits {
		if re.MatchString(c.ID) || re.MatchString(c.Author) || re.MatchString(c.Subject) {
			matched = append(matched, c.ID)
		}
	}
	return matched
}

// =============================================================================
// Rows - Rendered Row Serialization
// =============================================================================

// Page is a window of rendered rows.
type Page struct {
	Offset int   `json:"offset"`
	Total  int   `json:"total"`
	Rows   []Row `json:"rows"`
}

// Row is one rendered row.
type Row struct {
	Row       int       `json:"row"`
	Commit    string    `json:"commit"`
	Timestamp int64     `json:"timestamp,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Elements  []Element `json:"elements"`
}

// Element is one drawable element of a row.
//
// Kind is "node", "edge-up" or "edge-down". For edges, Up and Down are the
// rows of the edge's endpoints; Down is -1 for a stub to a parent that is
// not loaded. For nodes both are the node's row.
type Element struct {
	Kind          string `json:"kind"`
	Position      int    `json:"position"`
	OtherPosition int    `json:"other_position"`
	EdgeKind      string `json:"edge_kind,omitempty"` // "normal", "not-load" or "dotted"
	Color         int    `json:"color"`
	Selected      bool   `json:"selected,omitempty"`
	Up            int    `json:"up"`
	Down          int    `json:"down"`
	Target        int    `json:"target,omitempty"`
}

// =============================================================================
// Actions
// =============================================================================

// ActionRequest addresses an action at a node row or an edge between rows.
//
// Node is set for node targets; Up and Down (with EdgeKind) for edges, where
// a not-load stub has no Down. Neither is set for collapse-all and
// expand-all.
type ActionRequest struct {
	Verb     string `json:"verb"`
	Node     *int   `json:"node,omitempty"`
	Up       *int   `json:"up,omitempty"`
	Down     *int   `json:"down,omitempty"`
	EdgeKind string `json:"edge_kind,omitempty"`
	Target   int    `json:"target,omitempty"` // missing parent ordinal of a not-load stub
}

// ActionResponse reports the effect of an action in commit IDs.
type ActionResponse struct {
	Changed   bool     `json:"changed"`
	Shown     []string `json:"shown,omitempty"`
	Hidden    []string `json:"hidden,omitempty"`
	Cursor    string   `json:"cursor,omitempty"` // "hand" or empty
	Selection []string `json:"selection,omitempty"`
	RowCount  int      `json:"row_count"`
}
