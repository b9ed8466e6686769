package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/commitgraph/pkg/render/nodelink"
	"github.com/matzehuels/commitgraph/pkg/render/term"
)

// Export formats.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// logOpts holds the command-line flags for the log command.
type logOpts struct {
	sourceOpts
	viewOpts
	offset   int  // first row to print
	rows     int  // rows to print (0: all)
	plain    bool // no colors
	noLabels bool // lanes only
}

// logCommand creates the log command, which prints the lane graph.
func (c *CLI) logCommand() *cobra.Command {
	var opts logOpts

	cmd := &cobra.Command{
		Use:   "log [repo|file.json|-]",
		Short: "Print the lane graph of a commit history",
		Long: `Print the lane graph of a commit history.

The input is a git repository directory (default: the current directory),
a JSON commit log, or "-" to read a JSON log from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLog(cmd.Context(), inputArg(args), cmd.InOrStdin(), cmd.OutOrStdout(), &opts)
		},
	}

	opts.sourceOpts.addFlags(cmd)
	opts.viewOpts.addFlags(cmd)
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "first row to print")
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "number of rows to print (default: all)")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colors")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "print lanes without commit ids and subjects")

	return cmd
}

func (c *CLI) runLog(ctx context.Context, input string, stdin io.Reader, w io.Writer, opts *logOpts) error {
	l, err := c.loadLog(ctx, input, stdin, opts.sourceOpts)
	if err != nil {
		return err
	}
	v, err := c.buildView(ctx, l, opts.viewOpts)
	if err != nil {
		return err
	}
	defer v.Close()

	page, err := v.page(opts.offset, opts.rows)
	if err != nil {
		return err
	}
	cfg := c.config()
	r := term.New(term.Options{
		Palette:        cfg.Render.Palette,
		SelectedMarker: cfg.Render.SelectedMarker,
		Plain:          opts.plain,
		HideLabels:     opts.noLabels,
	})
	return r.Render(w, page.Rows)
}

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	sourceOpts
	viewOpts
	output   string // output file (default: stdout)
	format   string // json, dot or svg
	detailed bool   // timestamps in DOT labels
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [repo|file.json|-]",
		Short: "Write the graph as JSON rows, DOT or SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatFromPath(opts.output)
			}
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), inputArg(args), cmd.InOrStdin(), cmd.OutOrStdout(), &opts)
		},
	}

	opts.sourceOpts.addFlags(cmd)
	opts.viewOpts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json, dot, svg (default: from --output, else json)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include timestamps in DOT and SVG labels")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormat)

	return cmd
}

// formatFromPath guesses the format from an output file extension.
func formatFromPath(path string) string {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case formatDOT, "gv":
		return formatDOT
	case formatSVG:
		return formatSVG
	default:
		return formatJSON
	}
}

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatDOT, formatSVG:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be json, dot or svg)", format)
}

func (c *CLI) runExport(ctx context.Context, input string, stdin io.Reader, stdout io.Writer, opts *exportOpts) error {
	l, err := c.loadLog(ctx, input, stdin, opts.sourceOpts)
	if err != nil {
		return err
	}
	v, err := c.buildView(ctx, l, opts.viewOpts)
	if err != nil {
		return err
	}
	defer v.Close()

	data, err := c.export(ctx, v, opts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(stdout, "Exported %d rows", v.graph.RowCount())
	printFile(stdout, opts.output)
	return nil
}

func (c *CLI) export(ctx context.Context, v *view, opts *exportOpts) ([]byte, error) {
	if opts.format == formatJSON {
		page, err := v.page(0, 0)
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	dot := nodelink.FromVisible(v.graph, v.commits, nodelink.Options{
		Detailed: opts.detailed,
		Palette:  c.config().Render.Palette,
	})
	if opts.format == formatDOT {
		return []byte(dot), nil
	}
	return nodelink.RenderSVG(ctx, dot)
}
