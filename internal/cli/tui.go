package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pydepgraph/pkg/dag"
	"github.com/matzehuels/pydepgraph/pkg/deps"
	"github.com/matzehuels/pydepgraph/pkg/render/nodelink"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	annotationStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
)

// viewCommand creates the view command for browsing a graph in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		library string
		number  int
		lenient bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the dependency graph interactively",
		Long: `Build the dependency graph of a package and browse its nodes in the terminal.
The panel below the list annotates the selected node with its index, name and
version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			library, number = c.target(cmd, library, number)
			g, err := c.buildGraph(cmd.Context(), library, number, lenient)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newGraphModel(g),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}

	addTargetFlags(cmd, &library, &number, &lenient)
	return cmd
}

// =============================================================================
// GraphModel - Interactive node browser
// =============================================================================

// GraphModel is the bubbletea model for browsing a dependency graph.
//
// It owns all view state: which node is selected, which slice of the list is
// visible, and whether the annotation panel is shown for the selection.
type GraphModel struct {
	Nodes          []*dag.Node
	Summary        string
	Cursor         int
	Offset         int
	Height         int
	ShowAnnotation bool
}

func newGraphModel(g *dag.DAG) GraphModel {
	return GraphModel{
		Nodes:          g.Nodes(),
		Summary:        summaryLine(g),
		Height:         15,
		ShowAnnotation: true,
	}
}

func (m GraphModel) Init() tea.Cmd {
	return nil
}

func (m GraphModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m = m.moveTo(m.Cursor - 1)
		case "down", "j":
			m = m.moveTo(m.Cursor + 1)
		case "home", "g":
			m = m.moveTo(0)
		case "end", "G":
			m = m.moveTo(len(m.Nodes) - 1)
		case "enter", " ", "a":
			m.ShowAnnotation = !m.ShowAnnotation
		}
	case tea.WindowSizeMsg:
		// Leave room for the title, help line and annotation panel.
		m.Height = max(msg.Height-12, 3)
		m = m.moveTo(m.Cursor)
	}
	return m, nil
}

// moveTo selects node i, clamped to the list, and scrolls it into view.
func (m GraphModel) moveTo(i int) GraphModel {
	m.Cursor = min(max(i, 0), max(len(m.Nodes)-1, 0))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

// Selected returns the node under the cursor, or nil for an empty graph.
func (m GraphModel) Selected() *dag.Node {
	if m.Cursor < 0 || m.Cursor >= len(m.Nodes) {
		return nil
	}
	return m.Nodes[m.Cursor]
}

func (m GraphModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Summary))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ toggle annotation  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, strconv.Itoa(n.ID), n.Name(), n.Version()})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Name", "Version").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			n := m.Nodes[idx]
			base := lipgloss.NewStyle()
			switch {
			case n.Meta[deps.MetaUnparsed] == true:
				base = base.Foreground(colorYellow)
			case n.ID == dag.RootID:
				base = base.Foreground(colorCyan)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if sel := m.Selected(); sel != nil && m.ShowAnnotation {
		b.WriteString(annotationStyle.Render(nodelink.Annotation(*sel)))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	return b.String()
}
