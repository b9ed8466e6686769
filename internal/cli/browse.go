package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/commitgraph/pkg/graph"
	"github.com/matzehuels/commitgraph/pkg/render/term"
)

// browseOpts holds the command-line flags for the browse command.
type browseOpts struct {
	sourceOpts
	viewOpts
}

// browseCommand creates the browse command, an interactive graph viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var opts browseOpts

	cmd := &cobra.Command{
		Use:   "browse [repo|file.json|-]",
		Short: "Collapse and expand the graph interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := c.loadLog(ctx, inputArg(args), cmd.InOrStdin(), opts.sourceOpts)
			if err != nil {
				return err
			}
			v, err := c.buildView(ctx, l, opts.viewOpts)
			if err != nil {
				return err
			}
			defer v.Close()

			cfg := c.config()
			r := term.New(term.Options{Palette: cfg.Render.Palette, SelectedMarker: cfg.Render.SelectedMarker})
			m := newBrowseModel(ctx, v, r)
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	opts.sourceOpts.addFlags(cmd)
	opts.viewOpts.addFlags(cmd)

	return cmd
}

// =============================================================================
// browseModel - Interactive graph view
// =============================================================================

// browseModel is the bubbletea model of the browse command. The cursor
// always sits on a node row.
type browseModel struct {
	ctx      context.Context
	view     *view
	renderer *term.Renderer

	cursor int // row under the cursor
	top    int // first row on screen
	height int // rows on screen
	status string
}

func newBrowseModel(ctx context.Context, v *view, r *term.Renderer) browseModel {
	return browseModel{ctx: ctx, view: v, renderer: r, height: 15}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "home", "g":
			m.move(-m.cursor)
		case "end", "G":
			m.move(m.view.graph.RowCount())
		case "enter", " ":
			m.act(graph.ActionRequest{Verb: "click", Node: &m.cursor})
		case "s":
			m.act(graph.ActionRequest{Verb: "select", Node: &m.cursor})
		case "e":
			m.expandBelow()
		case "x":
			m.act(graph.ActionRequest{Verb: "expand-all"})
		case "c":
			m.act(graph.ActionRequest{Verb: "collapse-all"})
		}
	case tea.WindowSizeMsg:
		m.height = max((msg.Height-4)/2, 3)
		m.scroll()
	}
	return m, nil
}

// move shifts the cursor by delta rows, clamped to the graph.
func (m *browseModel) move(delta int) {
	m.cursor = max(min(m.cursor+delta, m.view.graph.RowCount()-1), 0)
	m.scroll()
}

// scroll keeps the cursor on screen.
func (m *browseModel) scroll() {
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+m.height {
		m.top = m.cursor - m.height + 1
	}
	m.top = max(min(m.top, m.view.graph.RowCount()-m.height), 0)
}

// expandBelow expands the first dotted edge leaving the cursor row.
func (m *browseModel) expandBelow() {
	page, err := m.view.page(m.cursor, 1)
	if err != nil || len(page.Rows) == 0 {
		return
	}
	for _, el := range page.Rows[0].Elements {
		if el.Kind == "edge-down" && el.EdgeKind == "dotted" && el.Up == m.cursor {
			m.act(graph.ActionRequest{Verb: "click", Up: &el.Up, Down: &el.Down, EdgeKind: el.EdgeKind})
			return
		}
	}
	m.status = "nothing collapsed below this commit"
}

// act performs req and keeps the cursor on the same commit when it is
// still visible.
func (m *browseModel) act(req graph.ActionRequest) {
	g := m.view.graph
	if g.RowCount() == 0 {
		return
	}
	current, err := g.RowCommitID(m.cursor)
	if err != nil {
		m.status = err.Error()
		return
	}
	a, err := graph.ToAction(req)
	if err != nil {
		m.status = err.Error()
		return
	}
	ans, err := g.PerformAction(m.ctx, a)
	if err != nil {
		m.status = err.Error()
		return
	}
	resp := graph.FromAnswer(ans, g.Permanent().Commits.CommitIDs, g.RowCount())

	switch {
	case resp.Changed:
		m.status = fmt.Sprintf("%d shown, %d hidden, %d rows", len(resp.Shown), len(resp.Hidden), resp.RowCount)
	case resp.Selection != nil:
		m.status = fmt.Sprintf("%d selected", len(resp.Selection))
	case g.ReadOnly():
		m.status = "filtered view is read-only"
	default:
		m.status = ""
	}
	if row, ok := g.RowOf(current); ok {
		m.cursor = row
	}
	m.move(0)
}

func (m browseModel) View() string {
	var b strings.Builder
	g := m.view.graph

	title := fmt.Sprintf("%d rows · sort %s", g.RowCount(), g.Sort())
	if g.ReadOnly() {
		title += " · read-only"
	}
	b.WriteString(StyleTitle.Render(appName) + " " + StyleDim.Render(title))
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("↑/↓ move  ⏎ collapse/expand  e expand below  s select  x expand all  c collapse all  q quit"))
	b.WriteString("\n\n")

	if g.RowCount() == 0 {
		b.WriteString(StyleDim.Render("  no commits"))
		b.WriteString("\n")
		return b.String()
	}

	page, err := m.view.page(m.top, m.height)
	if err != nil {
		b.WriteString(StyleWarning.Render(err.Error()))
		return b.String()
	}
	for i, block := range m.renderer.Blocks(page.Rows) {
		for j, line := range block {
			prefix := "  "
			if j == 0 && page.Rows[i].Row == m.cursor {
				prefix = styleCursor.Render(iconCursor) + " "
			}
			b.WriteString(prefix + line + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styleHelp.Render(fmt.Sprintf("  [%d/%d] %s", m.cursor+1, g.RowCount(), m.status)))
	return b.String()
}
