package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pydepgraph/pkg/dag"
	"github.com/matzehuels/pydepgraph/pkg/deps"
	pderrors "github.com/matzehuels/pydepgraph/pkg/errors"
	pdio "github.com/matzehuels/pydepgraph/pkg/io"
	"github.com/matzehuels/pydepgraph/pkg/render/nodelink"
)

// Output formats accepted by the graph command.
const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

var graphFormats = []string{formatText, formatJSON, formatDOT, formatSVG}

type graphOpts struct {
	library  string
	number   int
	format   string
	output   string
	lenient  bool
	detailed bool
}

// graphCommand creates the graph command for building and exporting a dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the dependency graph of a package",
		Long: `Fetch a package from PyPI and graph it together with the first N dependencies
it declares. Each dependency becomes a node labelled with its name and version
constraint, connected to the package by an edge.`,
		Example: `  pydepgraph graph
  pydepgraph graph -l requests -n 4
  pydepgraph graph -l flask -n 5 -f svg -o flask.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.library, opts.number = c.target(cmd, opts.library, opts.number)
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	addTargetFlags(cmd, &opts.library, &opts.number, &opts.lenient)
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: "+strings.Join(graphFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", true, "show versions in DOT/SVG node labels")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, stdout io.Writer, opts graphOpts) error {
	if !slices.Contains(graphFormats, opts.format) {
		return pderrors.New(pderrors.ErrCodeInvalidFormat,
			"unknown format %q (use one of: %s)", opts.format, strings.Join(graphFormats, ", "))
	}

	g, err := c.buildGraph(ctx, opts.library, opts.number, opts.lenient)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeGraph(ctx, &buf, g, opts.format, opts.detailed); err != nil {
		return err
	}

	if opts.output == "" {
		_, err := stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	fprintSuccess(stdout, "Wrote %s graph of %s", opts.format, opts.library)
	fprintFile(stdout, opts.output)
	return nil
}

// buildGraph runs the assembler behind a spinner and logs the elapsed time.
func (c *CLI) buildGraph(ctx context.Context, library string, number int, lenient bool) (*dag.DAG, error) {
	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, c.stderr, fmt.Sprintf("Fetching %s from %s", library, c.config.RegistryURL))
	spin.Start()
	g, err := c.newAssembler(lenient).Build(ctx, library, number)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Built graph for %s with %d dependencies", library, g.EdgeCount()))
	return g, nil
}

// writeGraph encodes g to w in the named format.
func writeGraph(ctx context.Context, w io.Writer, g *dag.DAG, format string, detailed bool) error {
	switch format {
	case formatText:
		_, err := io.WriteString(w, formatTree(g))
		return err
	case formatJSON:
		return pdio.WriteJSON(g, w)
	case formatDOT:
		_, err := io.WriteString(w, nodelink.ToDOT(g, nodelink.Options{Detailed: detailed}))
		return err
	case formatSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{Detailed: detailed}))
		if err != nil {
			return pderrors.Wrap(pderrors.ErrCodeInternal, err, "render svg")
		}
		_, err = w.Write(svg)
		return err
	}
	return pderrors.New(pderrors.ErrCodeInvalidFormat, "unknown format %q", format)
}

// summaryLine describes g the way graph libraries print a digraph.
func summaryLine(g *dag.DAG) string {
	return fmt.Sprintf("DiGraph with %d nodes and %d edges", g.NodeCount(), g.EdgeCount())
}

// formatTree renders g as a summary line followed by a tree of the root
// and its dependencies.
func formatTree(g *dag.DAG) string {
	root, ok := g.Root()
	if !ok {
		return summaryLine(g) + "\n"
	}

	t := tree.Root(StyleTitle.Render(nodeLabel(root))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, id := range g.Children(root.ID) {
		n, _ := g.Node(id)
		label := nodeLabel(n)
		if n.Meta[deps.MetaUnparsed] == true {
			label = StyleWarning.Render(label + " (unparsed)")
		}
		t.Child(label)
	}

	var b strings.Builder
	b.WriteString(StyleDim.Render(summaryLine(g)))
	b.WriteString("\n")
	if summary := g.Meta().String(deps.MetaSummary); summary != "" {
		b.WriteString(StyleDim.Render(summary))
		b.WriteString("\n")
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func nodeLabel(n *dag.Node) string {
	label := fmt.Sprintf("[%d] %s", n.ID, n.Name())
	if v := n.Version(); v != "" {
		label += " " + v
	}
	return label
}
