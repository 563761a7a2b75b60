package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pairtree/pkg/tree"
)

// Browser styles
var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseLeafStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	browseNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BrowseModel - Interactive tree browser
// =============================================================================

type browseRow struct {
	node  *tree.Node[string]
	depth int
}

// BrowseModel is the bubbletea model for the tree browser. Internal nodes
// can be collapsed and expanded; the footer describes the selected node.
type BrowseModel struct {
	Root      *tree.Node[string]
	Cursor    int
	Offset    int
	Height    int
	collapsed map[*tree.Node[string]]bool
	rows      []browseRow
}

// NewBrowseModel creates a browser with every node expanded.
func NewBrowseModel(root *tree.Node[string]) BrowseModel {
	m := BrowseModel{
		Root:      root,
		Height:    15,
		collapsed: make(map[*tree.Node[string]]bool),
	}
	m.rows = m.visibleRows()
	return m
}

// visibleRows lists the nodes not hidden under a collapsed ancestor, in
// pre-order.
func (m BrowseModel) visibleRows() []browseRow {
	var rows []browseRow
	var visit func(n *tree.Node[string], depth int)
	visit = func(n *tree.Node[string], depth int) {
		rows = append(rows, browseRow{node: n, depth: depth})
		if m.collapsed[n] {
			return
		}
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	visit(m.Root, 0)
	return rows
}

// Selected returns the node under the cursor.
func (m BrowseModel) Selected() *tree.Node[string] {
	return m.rows[m.Cursor].node
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "enter", " ":
			if n := m.Selected(); !n.IsLeaf() {
				m.setCollapsed(n, !m.collapsed[n])
			}
		case "right", "l":
			m.setCollapsed(m.Selected(), false)
		case "left", "h":
			n := m.Selected()
			if !n.IsLeaf() && !m.collapsed[n] {
				m.setCollapsed(n, true)
			} else if p, ok := n.Parent(); ok {
				m.moveTo(m.indexOf(p))
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.moveTo(m.Cursor)
	}
	return m, nil
}

// setCollapsed updates n's state and keeps the cursor on n.
func (m *BrowseModel) setCollapsed(n *tree.Node[string], collapsed bool) {
	// collapsed is shared between model copies; copy on write so earlier
	// models keep their view.
	next := make(map[*tree.Node[string]]bool, len(m.collapsed)+1)
	for k, v := range m.collapsed {
		next[k] = v
	}
	if collapsed {
		next[n] = true
	} else {
		delete(next, n)
	}
	m.collapsed = next
	m.rows = m.visibleRows()
	m.moveTo(m.indexOf(n))
}

func (m BrowseModel) indexOf(n *tree.Node[string]) int {
	for i, r := range m.rows {
		if r.node == n {
			return i
		}
	}
	return 0
}

// moveTo places the cursor at i, clamped to the rows, and scrolls it into view.
func (m *BrowseModel) moveTo(i int) {
	m.Cursor = min(max(i, 0), len(m.rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Tree"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("↑/↓ navigate  ⏎ toggle  ←/→ collapse/expand  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := "  "
		switch {
		case r.node.IsLeaf():
		case m.collapsed[r.node]:
			marker = "+ "
		default:
			marker = "- "
		}
		line := cursor + strings.Repeat("  ", r.depth) + marker + r.node.Value()

		switch {
		case i == m.Cursor:
			b.WriteString(browseSelectedStyle.Render(line))
		case r.node.IsLeaf():
			b.WriteString(browseLeafStyle.Render(line))
		default:
			b.WriteString(browseNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	n := m.Selected()
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render(fmt.Sprintf("  [%d/%d]  depth %d · %d children · %d leaves below",
		m.Cursor+1, len(m.rows), n.Depth(), len(n.Children()), len(n.AllBottomLevelSuccessors()))))

	return b.String()
}

// browseCommand opens an element records file in the tree browser.
func (c *CLI) browseCommand() *cobra.Command {
	var ids string

	cmd := &cobra.Command{
		Use:   "browse <elements-file>",
		Short: "Browse a tree interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.loadTree(cmd.Context(), args[0], ids)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewBrowseModel(res.Tree), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", "id function the records were exported with: value (default), uuid")
	return cmd
}
